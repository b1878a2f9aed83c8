package storage

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// maxLineSize bounds a single line; cracked bcrypt lines are far below it.
const maxLineSize = 1024 * 1024

// ReadLines returns the trimmed, non-empty lines of the file at path in file order.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

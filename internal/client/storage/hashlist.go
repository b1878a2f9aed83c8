package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// HashListPath returns where the downloaded hash list id is stored in dir.
func HashListPath(dir, id string) string {
	return filepath.Join(dir, id+hashListSuffix)
}

// WriteHashList overwrites <dir>/<id>.left with one hash per line, in the given order,
// and returns the file path and the number of hashes written. Blank hashes are
// skipped. When progress is non-nil a progress bar is rendered on it.
func WriteHashList(dir, id string, hashes []string, progress io.Writer) (string, int, error) {
	path := HashListPath(dir, id)
	file, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create hash list file: %w", err)
	}
	defer file.Close()

	hashes = slices.DeleteFunc(slices.Clone(hashes), func(h string) bool {
		return strings.TrimSpace(h) == ""
	})

	var bar *progressbar.ProgressBar
	if progress != nil && len(hashes) > 0 {
		bar = progressbar.NewOptions(len(hashes),
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("[*] writing "+filepath.Base(path)),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(0),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(progress) }),
		)
	}

	w := bufio.NewWriter(file)
	for _, h := range hashes {
		if _, err := fmt.Fprintln(w, h); err != nil {
			return "", 0, fmt.Errorf("write hash list file: %w", err)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if err := w.Flush(); err != nil {
		return "", 0, fmt.Errorf("write hash list file: %w", err)
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return path, len(hashes), nil
}

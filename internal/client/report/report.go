// Package report renders the operator-facing lines printed by the client.
package report

import (
	"fmt"
	"strconv"

	"github.com/jabbercracky/jabbercracky-client/internal/models"
)

// HashList renders one entry of the hash list index.
func HashList(s models.HashListSummary) string {
	return fmt.Sprintf("[*] [ID: %s] Name: %s", s.ID, s.Name)
}

// Submission renders the one-line summary of a submit call for hash list id.
// Accepted results show the ID echoed by the server, falling back to id.
func Submission(id string, r *models.SubmissionResult) string {
	if !r.Accepted() {
		return fmt.Sprintf("[*] [ID: %s] Username: unknown | Found Count: 0 | Added Score: 0 | Total Score: 0 | New Items: 0 | Error: %s",
			id, r.Error)
	}

	shown := r.HashListID.String()
	if shown == "" {
		shown = id
	}
	return fmt.Sprintf("[*] [ID: %s] Username: %s | Found Count: %d | Added Score: %s | Total Score: %s | New Items: %d",
		shown, r.Username, r.FoundCount, score(r.AddedScore), score(r.TotalScore), len(r.NewItems))
}

// score prints the shortest exact form: 10, 2.5.
func score(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

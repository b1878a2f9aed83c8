package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jabbercracky/jabbercracky-client/internal/models"
)

// RemoteError is a non-2xx answer from the game service.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.Status, strings.TrimSpace(e.Body))
}

type submitResponse struct {
	Error      json.RawMessage   `json:"error"`
	HashListID models.ListID     `json:"hash_list_id"`
	Username   string            `json:"username"`
	FoundCount float64           `json:"found_count"`
	AddedScore float64           `json:"added_score"`
	TotalScore float64           `json:"total_score"`
	NewItems   []json.RawMessage `json:"new_items"`
}

func (r *submitResponse) result() *models.SubmissionResult {
	if len(r.Error) > 0 && string(r.Error) != "null" {
		return &models.SubmissionResult{
			Status: models.SubmissionRejected,
			Error:  rawText(r.Error),
		}
	}

	items := make([]string, 0, len(r.NewItems))
	for _, item := range r.NewItems {
		items = append(items, rawText(item))
	}
	return &models.SubmissionResult{
		Status:     models.SubmissionAccepted,
		HashListID: r.HashListID,
		Username:   r.Username,
		FoundCount: int(r.FoundCount),
		AddedScore: r.AddedScore,
		TotalScore: r.TotalScore,
		NewItems:   items,
	}
}

// rawText unquotes JSON strings and returns any other value as its JSON text.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

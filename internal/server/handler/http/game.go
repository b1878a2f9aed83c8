// Package http provides the HTTP handlers of the game server emulator.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jabbercracky/jabbercracky-client/internal/middleware"
	"github.com/jabbercracky/jabbercracky-client/internal/models"
	"github.com/jabbercracky/jabbercracky-client/internal/service"
)

// DefaultMaxUpload bounds a submission body when GameHandler.MaxUpload is unset.
const DefaultMaxUpload = 10 << 20

// GameService defines the game operations required by the GameHandler.
type GameService interface {
	// ListHashLists returns the index of all hash lists.
	ListHashLists(ctx context.Context) ([]models.HashListSummary, error)
	// GetHashList returns the hashes of one list.
	GetHashList(ctx context.Context, id models.ListID) ([]string, error)
	// Submit scores an uploaded results file for the given player.
	Submit(ctx context.Context, username string, id models.ListID, r io.Reader) (*models.SubmissionResult, error)
}

// GameHandler handles the /api/game endpoints.
type GameHandler struct {
	GameService GameService
	// MaxUpload caps the submit body in bytes.
	MaxUpload int64
	Log       *zap.Logger
}

type hashListsResponse struct {
	HashLists []models.HashListSummary `json:"hash_lists"`
}

type hashListResponse struct {
	HashList []string `json:"hash_list"`
}

type submitResponse struct {
	HashListID models.ListID `json:"hash_list_id"`
	Username   string        `json:"username"`
	FoundCount int           `json:"found_count"`
	AddedScore float64       `json:"added_score"`
	TotalScore float64       `json:"total_score"`
	NewItems   []string      `json:"new_items"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *GameHandler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

// writeJSON encodes v before touching the response, so an encoding failure
// still yields a 500 instead of an empty 200.
func (h *GameHandler) writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.logger().Error("encode response", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(append(b, '\n'))
}

// ListHashLists handles GET /api/game/hashlist.
func (h *GameHandler) ListHashLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.GameService.ListHashLists(r.Context())
	if err != nil {
		h.logger().Error("list hash lists", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, hashListsResponse{HashLists: lists})
}

// GetHashList handles GET /api/game/hashlist/{id}.
func (h *GameHandler) GetHashList(w http.ResponseWriter, r *http.Request) {
	id := models.ListID(chi.URLParam(r, "id"))

	hashes, err := h.GameService.GetHashList(r.Context(), id)
	if errors.Is(err, models.ErrHashListNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger().Error("get hash list", zap.String("hash_list_id", id.String()), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if hashes == nil {
		hashes = []string{}
	}
	h.writeJSON(w, hashListResponse{HashList: hashes})
}

// Submit handles POST /api/game/submit/{id} with a multipart "file" field.
// Game-level rejections are answered 200 with an "error" field.
func (h *GameHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id := models.ListID(chi.URLParam(r, "id"))
	user := middleware.GetUserFromContext(r.Context())

	limit := h.MaxUpload
	if limit <= 0 {
		limit = DefaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			http.Error(w, "submission too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, http.ErrMissingFile):
			h.writeJSON(w, errorResponse{Error: "no file uploaded"})
		default:
			http.Error(w, "invalid multipart body", http.StatusBadRequest)
		}
		return
	}
	defer file.Close()
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	res, err := h.GameService.Submit(r.Context(), user, id, file)
	switch {
	case errors.Is(err, models.ErrHashListNotFound),
		errors.Is(err, models.ErrHashListClosed),
		errors.Is(err, service.ErrEmptySubmission):
		h.writeJSON(w, errorResponse{Error: err.Error()})
		return
	case err != nil:
		h.logger().Error("submit", zap.String("hash_list_id", id.String()), zap.String("username", user), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	items := res.NewItems
	if items == nil {
		items = []string{}
	}
	h.writeJSON(w, submitResponse{
		HashListID: res.HashListID,
		Username:   res.Username,
		FoundCount: res.FoundCount,
		AddedScore: res.AddedScore,
		TotalScore: res.TotalScore,
		NewItems:   items,
	})
}

package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/jabbercracky/jabbercracky-client/internal/models"
	handler "github.com/jabbercracky/jabbercracky-client/internal/server/handler/http"
	"github.com/jabbercracky/jabbercracky-client/internal/service"
)

// fakeGameService records calls and returns preconfigured results.
type fakeGameService struct {
	lists  []models.HashListSummary
	hashes []string
	result *models.SubmissionResult
	err    error

	receivedID   models.ListID
	receivedBody string
}

func (f *fakeGameService) ListHashLists(ctx context.Context) ([]models.HashListSummary, error) {
	return f.lists, f.err
}

func (f *fakeGameService) GetHashList(ctx context.Context, id models.ListID) ([]string, error) {
	f.receivedID = id
	return f.hashes, f.err
}

func (f *fakeGameService) Submit(ctx context.Context, username string, id models.ListID, r io.Reader) (*models.SubmissionResult, error) {
	f.receivedID = id
	b, _ := io.ReadAll(r)
	f.receivedBody = string(b)
	return f.result, f.err
}

// withID routes the request through chi so {id} resolves.
func withID(pattern string, h http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.HandleFunc(pattern, h)
	return r
}

func multipartBody(t *testing.T, field, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile(field, "cracked.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte(content))
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return body, mw.FormDataContentType()
}

func TestListHashLists(t *testing.T) {
	fake := &fakeGameService{lists: []models.HashListSummary{{ID: "1", Name: "warmup"}, {ID: "abc", Name: "b"}}}
	h := &handler.GameHandler{GameService: fake}

	w := httptest.NewRecorder()
	h.ListHashLists(w, httptest.NewRequest(http.MethodGet, "/api/game/hashlist", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	want := `{"hash_lists":[{"hash_list_id":1,"hash_list_name":"warmup"},{"hash_list_id":"abc","hash_list_name":"b"}]}`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Errorf("body = %s; want %s", got, want)
	}
}

func TestListHashLists_LeadingZeroID(t *testing.T) {
	fake := &fakeGameService{lists: []models.HashListSummary{{ID: "007", Name: "bond"}, {ID: "+5", Name: "plus"}}}
	h := &handler.GameHandler{GameService: fake}

	w := httptest.NewRecorder()
	h.ListHashLists(w, httptest.NewRequest(http.MethodGet, "/api/game/hashlist", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if !json.Valid(w.Body.Bytes()) {
		t.Fatalf("invalid json body: %q", w.Body.String())
	}
	want := `{"hash_lists":[{"hash_list_id":"007","hash_list_name":"bond"},{"hash_list_id":"+5","hash_list_name":"plus"}]}`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Errorf("body = %s; want %s", got, want)
	}
}

func TestListHashLists_ServiceError(t *testing.T) {
	h := &handler.GameHandler{GameService: &fakeGameService{err: errors.New("db down")}}
	w := httptest.NewRecorder()
	h.ListHashLists(w, httptest.NewRequest(http.MethodGet, "/api/game/hashlist", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d; want 500", w.Code)
	}
}

func TestGetHashList(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		fake := &fakeGameService{hashes: []string{"aa", "bb"}}
		h := &handler.GameHandler{GameService: fake}
		w := httptest.NewRecorder()
		withID("/api/game/hashlist/{id}", h.GetHashList).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/game/hashlist/42", nil))

		if fake.receivedID != "42" {
			t.Errorf("service got id %q; want 42", fake.receivedID)
		}
		if got := strings.TrimSpace(w.Body.String()); got != `{"hash_list":["aa","bb"]}` {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("empty list encodes as array", func(t *testing.T) {
		h := &handler.GameHandler{GameService: &fakeGameService{}}
		w := httptest.NewRecorder()
		withID("/api/game/hashlist/{id}", h.GetHashList).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/game/hashlist/1", nil))

		if got := strings.TrimSpace(w.Body.String()); got != `{"hash_list":[]}` {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		h := &handler.GameHandler{GameService: &fakeGameService{err: models.ErrHashListNotFound}}
		w := httptest.NewRecorder()
		withID("/api/game/hashlist/{id}", h.GetHashList).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/game/hashlist/9", nil))

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d; want 404", w.Code)
		}
	})
}

func TestSubmit_Accepted(t *testing.T) {
	fake := &fakeGameService{result: &models.SubmissionResult{
		Status: models.SubmissionAccepted, HashListID: "7", Username: "alice",
		FoundCount: 2, AddedScore: 1, TotalScore: 10, NewItems: []string{"aa"},
	}}
	h := &handler.GameHandler{GameService: fake}

	body, ct := multipartBody(t, "file", "aa:pw\n")
	req := httptest.NewRequest(http.MethodPost, "/api/game/submit/7", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	withID("/api/game/submit/{id}", h.Submit).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if fake.receivedBody != "aa:pw\n" {
		t.Errorf("service got body %q", fake.receivedBody)
	}

	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["hash_list_id"] != float64(7) || got["username"] != "alice" || got["total_score"] != float64(10) {
		t.Errorf("unexpected response: %v", got)
	}
	if _, hasErr := got["error"]; hasErr {
		t.Error("accepted response must not carry an error field")
	}
}

func TestSubmit_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		field   string
		wantMsg string
	}{
		{"closed", models.ErrHashListClosed, "file", "hash list is closed"},
		{"unknown list", models.ErrHashListNotFound, "file", "hash list not found"},
		{"empty file", service.ErrEmptySubmission, "file", "submission is empty"},
		{"missing file field", nil, "other", "no file uploaded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &handler.GameHandler{GameService: &fakeGameService{err: tc.err}}
			body, ct := multipartBody(t, tc.field, "x")
			req := httptest.NewRequest(http.MethodPost, "/api/game/submit/1", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			withID("/api/game/submit/{id}", h.Submit).ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d; want 200", w.Code)
			}
			var got struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if got.Error != tc.wantMsg {
				t.Errorf("error = %q; want %q", got.Error, tc.wantMsg)
			}
		})
	}
}

func TestSubmit_TooLarge(t *testing.T) {
	h := &handler.GameHandler{GameService: &fakeGameService{}, MaxUpload: 64}
	body, ct := multipartBody(t, "file", strings.Repeat("a", 1024))
	req := httptest.NewRequest(http.MethodPost, "/api/game/submit/1", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	withID("/api/game/submit/{id}", h.Submit).ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d; want 413", w.Code)
	}
}

func TestSubmit_ServiceError(t *testing.T) {
	h := &handler.GameHandler{GameService: &fakeGameService{err: errors.New("db down")}}
	body, ct := multipartBody(t, "file", "x")
	req := httptest.NewRequest(http.MethodPost, "/api/game/submit/1", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	withID("/api/game/submit/{id}", h.Submit).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d; want 500", w.Code)
	}
}

func TestSubmit_EncodeFailure(t *testing.T) {
	fake := &fakeGameService{result: &models.SubmissionResult{
		Status: models.SubmissionAccepted, HashListID: "1", AddedScore: math.NaN(),
	}}
	h := &handler.GameHandler{GameService: fake}
	body, ct := multipartBody(t, "file", "x")
	req := httptest.NewRequest(http.MethodPost, "/api/game/submit/1", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	withID("/api/game/submit/{id}", h.Submit).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d; want 500", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q; want plain error", ct)
	}
}

// Package api talks to the jabbercracky game service: it lists hash lists,
// downloads one, and uploads cracked results for scoring.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"github.com/docker/go-units"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jabbercracky/jabbercracky-client/internal/models"
)

const (
	apiHashLists = "/api/game/hashlist"
	apiSubmit    = "/api/game/submit"

	// RequestIDHeader carries a per-request UUID for correlating client and server logs.
	RequestIDHeader = "X-Request-ID"
)

// Client is a stateless wrapper around the game endpoints.
// The bearer token is fixed at construction.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	log     *zap.Logger
}

// NewClient returns a Client for baseURL authenticating with token.
// A nil log disables diagnostics.
func NewClient(httpClient *http.Client, baseURL, token string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{http: httpClient, baseURL: baseURL, token: token, log: log}
}

// ListHashLists returns every hash list the server offers, sorted ascending by ID.
func (c *Client) ListHashLists(ctx context.Context) ([]models.HashListSummary, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+apiHashLists, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		HashLists []models.HashListSummary `json:"hash_lists"`
	}
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("fetch hash lists: %w", err)
	}

	lists := result.HashLists
	sort.SliceStable(lists, func(i, j int) bool {
		return lists[i].ID.Less(lists[j].ID)
	})
	return lists, nil
}

// FetchHashList returns the hashes of list id in server order.
func (c *Client) FetchHashList(ctx context.Context, id string) ([]string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+apiHashLists+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		HashList []string `json:"hash_list"`
	}
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("fetch hash list %s: %w", id, err)
	}
	return result.HashList, nil
}

// SubmitHashList uploads the file at filePath, unmodified, as cracked results for list id.
// A 2xx answer carrying an "error" field is a rejected submission, not an error.
func (c *Client) SubmitHashList(ctx context.Context, id, filePath string) (*models.SubmissionResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open submission: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	size, err := io.Copy(part, file)
	if err != nil {
		return nil, fmt.Errorf("copy file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+apiSubmit+"/"+url.PathEscape(id), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.log.Debug("uploading submission",
		zap.String("hash_list_id", id),
		zap.String("file", filePath),
		zap.String("size", units.HumanSize(float64(size))),
	)

	var resp submitResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("submit game data: %w", err)
	}
	return resp.result(), nil
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set(RequestIDHeader, uuid.NewString())
	return req, nil
}

// do sends req and decodes a 2xx JSON body into out.
func (c *Client) do(req *http.Request, out any) error {
	log := c.log.With(
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", req.Header.Get(RequestIDHeader)),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	log.Debug("response received", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(data)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{Status: resp.StatusCode, Body: string(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

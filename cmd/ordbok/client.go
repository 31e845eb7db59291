package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyperjump/ordbok/internal/models"
)

// apiClient talks to a running ordbok server.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// do sends a request and decodes a successful JSON response into out (when out is non-nil).
// Statuses other than 200 become errors carrying the server's message.
func (c *apiClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) Search(req *models.SearchRequest) (*models.SearchResponse, error) {
	var response models.SearchResponse
	if err := c.do(context.Background(), http.MethodPost, "/api/v1/search", req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *apiClient) Status() (*statusResponse, error) {
	var s statusResponse
	if err := c.do(context.Background(), http.MethodGet, "/api/v1/status", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Reload asks the server to republish its corpus. With fromStorage the server reloads
// stored words only; otherwise it syncs to its configured sources.
func (c *apiClient) Reload(fromStorage bool) error {
	path := "/api/v1/corpus/reload"
	if fromStorage {
		path += "?from=storage"
	}
	return c.do(context.Background(), http.MethodPost, path, nil, nil)
}

func (c *apiClient) AddFavorite(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/api/v1/favorites/"+url.PathEscape(id), nil, nil)
}

func (c *apiClient) RemoveFavorite(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/favorites/"+url.PathEscape(id), nil, nil)
}

func (c *apiClient) ListFavorites(ctx context.Context) ([]string, error) {
	var out struct {
		IDs []string `json:"ids"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/favorites", nil, &out); err != nil {
		return nil, err
	}
	return out.IDs, nil
}

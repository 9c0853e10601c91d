package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient is a thin wrapper around the GradeKeeper REST API for the admin
// tool. It keeps no state beyond the endpoint and the HTTP client.
type APIClient struct {
	endpoint string
	client   *http.Client
}

func NewAPIClient(endpoint string) *APIClient {
	return &APIClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// TokenPair mirrors the login/refresh response payload.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type apiError struct {
	Detail string `json:"detail"`
}

func (c *APIClient) do(ctx context.Context, method, path, token string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var e apiError
		if json.Unmarshal(data, &e) == nil && e.Detail != "" {
			return fmt.Errorf("server: %s (%d)", e.Detail, resp.StatusCode)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if out != nil && len(data) > 0 {
		return json.Unmarshal(data, out)
	}
	return nil
}

func (c *APIClient) Register(ctx context.Context, username, password string, readonly bool) error {
	return c.do(ctx, http.MethodPost, "/auth/register", "", map[string]any{
		"username": username,
		"password": password,
		"readonly": readonly,
	}, nil)
}

func (c *APIClient) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	var pair TokenPair
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]any{
		"username": username,
		"password": password,
	}, &pair)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *APIClient) ImportCSV(ctx context.Context, token, source string) (string, error) {
	var resp struct {
		JobID string `json:"job_id"`
	}
	err := c.do(ctx, http.MethodPost, "/students/import-csv", token, map[string]any{
		"source": source,
	}, &resp)
	return resp.JobID, err
}

func (c *APIClient) BulkDelete(ctx context.Context, token string, ids []int64) (string, error) {
	var resp struct {
		JobID string `json:"job_id"`
	}
	err := c.do(ctx, http.MethodPost, "/students/bulk-delete", token, map[string]any{
		"ids": ids,
	}, &resp)
	return resp.JobID, err
}

func (c *APIClient) JobStatus(ctx context.Context, token, jobID string) (map[string]any, error) {
	var job map[string]any
	if err := c.do(ctx, http.MethodGet, "/jobs/"+jobID, token, nil, &job); err != nil {
		return nil, err
	}
	return job, nil
}

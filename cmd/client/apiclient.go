package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string) *apiClient {
	return &apiClient{base: base, http: &http.Client{Timeout: 15 * time.Second}}
}

// responseError is a non-2xx answer from the server.
type responseError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *responseError) Error() string {
	msg := fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	for field, problem := range e.Fields {
		msg += fmt.Sprintf("\n  %s: %s", field, problem)
	}
	return msg
}

// do sends payload as JSON and decodes a 2xx body into out when out is non-nil.
func (c *apiClient) do(ctx context.Context, method, path, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if json.Unmarshal(b, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return &responseError{Status: resp.StatusCode, Message: apiErr.Error, Fields: apiErr.Fields}
	}
	if out == nil || len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode server response: %w", err)
	}
	return nil
}

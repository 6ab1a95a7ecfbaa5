// Package cli implements the checklistctl commands.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultServer = "http://localhost:8080"

// Client talks to the due diligence HTTP API with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// APIError is a non-2xx response decoded from the service error envelope.
type APIError struct {
	Status      int
	Code        string   `json:"error"`
	Description string   `json:"error_description"`
	Details     []string `json:"details"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%d %s", e.Status, e.Code)
	if e.Description != "" {
		msg += ": " + e.Description
	}
	for _, d := range e.Details {
		msg += "\n  - " + d
	}
	return msg
}

// Do sends body as JSON and decodes a successful response into out.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// clientFromFlags resolves --server and --token, falling back to
// DD_SERVER_URL and DD_TOKEN.
func clientFromFlags(server, token string) *Client {
	if server == "" {
		server = os.Getenv("DD_SERVER_URL")
	}
	if server == "" {
		server = defaultServer
	}
	if token == "" {
		token = os.Getenv("DD_TOKEN")
	}
	return NewClient(server, token)
}

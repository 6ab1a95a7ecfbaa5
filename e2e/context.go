//go:build e2e

// Package e2e drives the service over HTTP with godog scenarios.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"duediligence/internal/app"
	"duediligence/internal/platform/config"
	id "duediligence/pkg/domain"
)

// TestContext holds one scenario's server, caller identity and last response.
type TestContext struct {
	server     *httptest.Server
	app        *app.App
	client     *http.Client
	token      string
	lastStatus int
	lastBody   []byte
	vars       map[string]string
}

// Start boots an in-process server backed by the in-memory stores.
func (tc *TestContext) Start() error {
	cfg := config.Default()
	cfg.Server.RequestTimeout = 5 * time.Second
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	application, err := app.New(context.Background(), cfg, logger, app.WithRegistry(prometheus.NewRegistry()))
	if err != nil {
		return err
	}
	tc.app = application
	tc.server = httptest.NewServer(application.Router)
	tc.client = &http.Client{Timeout: 10 * time.Second}
	tc.token = ""
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.vars = map[string]string{}
	return nil
}

func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
	}
	if tc.app != nil {
		tc.app.Close()
	}
}

// AuthenticateAs mints a token for a user holding role.
func (tc *TestContext) AuthenticateAs(user, role string) error {
	token, err := tc.app.JWT.GenerateAccessToken(id.UserID(user), []string{role}, time.Hour)
	if err != nil {
		return err
	}
	tc.token = token
	return nil
}

func (tc *TestContext) ClearAuthentication() {
	tc.token = ""
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body)
}

func (tc *TestContext) PATCH(path string, body any) error {
	return tc.do(http.MethodPatch, path, body)
}

func (tc *TestContext) do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.server.URL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) LastStatus() int {
	return tc.lastStatus
}

// ResponseField reads a top-level or dotted field from the last JSON body.
func (tc *TestContext) ResponseField(path string) (any, error) {
	var doc any
	if err := json.Unmarshal(tc.lastBody, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %s", tc.lastBody)
	}
	for _, part := range strings.Split(path, ".") {
		obj, ok := doc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q not found in %s", path, tc.lastBody)
		}
		if doc, ok = obj[part]; !ok {
			return nil, fmt.Errorf("field %q not found in %s", path, tc.lastBody)
		}
	}
	return doc, nil
}

func (tc *TestContext) Set(key, value string) {
	tc.vars[key] = value
}

func (tc *TestContext) Get(key string) string {
	return tc.vars[key]
}

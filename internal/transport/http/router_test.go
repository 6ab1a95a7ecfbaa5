package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"duediligence/internal/platform/metrics"
	"duediligence/internal/platform/middleware"
	"duediligence/pkg/platform/httputil"
	"duediligence/pkg/requestcontext"
)

type staticValidator struct{}

func (staticValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &middleware.JWTClaims{UserID: "user-1", Roles: []string{"Reviewer"}}, nil
}

type whoAmI struct{}

func (whoAmI) Register(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"user":     requestcontext.UserID(r.Context()),
			"reviewer": requestcontext.HasRole(r.Context(), requestcontext.RoleReviewer),
		})
	})
}

type RouterSuite struct {
	suite.Suite
	checks map[string]HealthCheck
	router http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.checks = map[string]HealthCheck{}
	reg := prometheus.NewRegistry()
	s.router = NewRouter(Config{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:      metrics.NewWithRegisterer(reg),
		Validator:    staticValidator{},
		Gatherer:     reg,
		HealthChecks: s.checks,
	}, whoAmI{})
}

func (s *RouterSuite) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *RouterSuite) TestHealth() {
	s.Run("ok without dependencies", func() {
		rr := s.get("/health", "")
		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`{"status":"ok"}`, rr.Body.String())
	})

	s.Run("degraded when a dependency fails", func() {
		s.checks["postgres"] = func(context.Context) error { return errors.New("connection refused") }
		s.checks["redis"] = func(context.Context) error { return nil }

		rr := s.get("/health", "")
		s.Equal(http.StatusServiceUnavailable, rr.Code)
		var body healthResponse
		s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &body))
		s.Equal("degraded", body.Status)
		s.Equal("connection refused", body.Checks["postgres"])
		s.Equal("ok", body.Checks["redis"])
	})
}

func (s *RouterSuite) TestMetricsIsPublic() {
	s.get("/whoami", "good")

	rr := s.get("/metrics", "")
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "http_requests_total")
}

func (s *RouterSuite) TestAuthentication() {
	s.Run("missing token", func() {
		rr := s.get("/whoami", "")
		s.Equal(http.StatusUnauthorized, rr.Code)
	})

	s.Run("invalid token", func() {
		rr := s.get("/whoami", "forged")
		s.Equal(http.StatusUnauthorized, rr.Code)
	})

	s.Run("principal reaches the handler with normalised roles", func() {
		rr := s.get("/whoami", "good")
		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`{"user":"user-1","reviewer":true}`, rr.Body.String())
		s.NotEmpty(rr.Header().Get("X-Request-ID"))
	})
}

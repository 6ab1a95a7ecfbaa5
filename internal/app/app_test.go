package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"duediligence/internal/platform/config"
	id "duediligence/pkg/domain"
)

type AppSuite struct {
	suite.Suite
	app *App
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppSuite))
}

func (s *AppSuite) SetupTest() {
	a, err := New(context.Background(), config.Default(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithRegistry(prometheus.NewRegistry()),
	)
	s.Require().NoError(err)
	s.app = a
}

func (s *AppSuite) TearDownTest() {
	s.app.Close()
}

func (s *AppSuite) token(user, role string) string {
	tok, err := s.app.JWT.GenerateAccessToken(id.UserID(user), []string{role}, time.Hour)
	s.Require().NoError(err)
	return tok
}

func (s *AppSuite) call(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.app.Router.ServeHTTP(rr, req)

	var decoded map[string]any
	if rr.Body.Len() > 0 {
		_ = json.Unmarshal(rr.Body.Bytes(), &decoded)
	}
	return rr, decoded
}

func (s *AppSuite) publishKYC() {
	rr, _ := s.call(http.MethodPost, "/due-diligence-checklists", s.token("admin-1", "admin"), map[string]any{
		"checklistType": "KYC",
		"versionNumber": 1,
		"sections": []map[string]any{{
			"title": "Identity",
			"items": []map[string]any{{"title": "Proof of ID"}},
		}},
	})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
}

func (s *AppSuite) TestOperationalEndpoints() {
	rr, body := s.call(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, rr.Code)
	s.Equal("ok", body["status"])

	rr, _ = s.call(http.MethodGet, "/metrics", "", nil)
	s.Equal(http.StatusOK, rr.Code)

	rr, _ = s.call(http.MethodGet, "/onboardings", "", nil)
	s.Equal(http.StatusUnauthorized, rr.Code)
}

func (s *AppSuite) TestKYCOnboardingEndToEnd() {
	s.publishKYC()
	reviewer := s.token("reviewer-1", "reviewer")
	approver := s.token("approver-1", "approver")

	rr, tmpl := s.call(http.MethodGet, "/due-diligence-checklists/KYC/1", reviewer, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal("KYC", tmpl["checklistType"])

	rr, created := s.call(http.MethodPost, "/onboardings", reviewer, map[string]any{
		"registrationId":   uuid.NewString(),
		"counterpartyName": "Acme Ltd",
		"checklistType":    "KYC",
	})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	s.Equal("NEW", created["status"])
	s.Equal("PENDING", created["decision"])
	s.Equal("INACTIVE", created["accountStatus"])
	onboardingID := created["id"].(string)
	checklistID := created["checklistId"].(string)
	accountID := created["accountId"].(string)

	rr, inst := s.call(http.MethodGet, "/due-diligence-checklists/"+checklistID, reviewer, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	item := inst["sections"].([]any)[0].(map[string]any)["items"].([]any)[0].(map[string]any)
	s.Equal("PENDING", item["status"])
	s.Equal([]any{}, item["notes"])

	rr, _ = s.call(http.MethodPost, "/onboardings/"+onboardingID+"/decision", approver, map[string]any{
		"decision":      "APPROVED",
		"decisionNotes": "too early",
	})
	s.Equal(http.StatusPreconditionFailed, rr.Code)

	rr, _ = s.call(http.MethodPatch, "/due-diligence-checklists/"+checklistID+"/checklist", reviewer, []map[string]any{{
		"sectionTitle": "Identity",
		"itemTitle":    "Proof of ID",
		"status":       "SATISFACTORY",
		"notes":        []map[string]any{{"text": "verified passport", "userId": "u1"}},
	}})
	s.Require().Equal(http.StatusNoContent, rr.Code, rr.Body.String())

	rr, inst = s.call(http.MethodGet, "/due-diligence-checklists/"+checklistID, reviewer, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	item = inst["sections"].([]any)[0].(map[string]any)["items"].([]any)[0].(map[string]any)
	s.Equal("SATISFACTORY", item["status"])
	s.Require().Len(item["notes"], 1)
	s.Equal("u1", item["notes"].([]any)[0].(map[string]any)["userId"])

	rr, view := s.call(http.MethodGet, "/onboardings/"+onboardingID, reviewer, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal("IN_PROGRESS", view["status"])

	rr, decided := s.call(http.MethodPost, "/onboardings/"+onboardingID+"/decision", approver, map[string]any{
		"decision":      "APPROVED",
		"decisionNotes": "all checks passed",
	})
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.Equal("APPROVED", decided["decision"])
	s.Equal("ACTIVE", decided["accountStatus"])
	s.Equal("approver-1", decided["decidedBy"])
	s.Equal("COMPLETE", decided["status"])

	rr, acct := s.call(http.MethodGet, "/accounts/"+accountID, reviewer, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal("ACTIVE", acct["status"])

	rr, _ = s.call(http.MethodPost, "/onboardings/"+onboardingID+"/decision", approver, map[string]any{
		"decision":      "DECLINED",
		"decisionNotes": "second attempt",
	})
	s.Equal(http.StatusPreconditionFailed, rr.Code)

	rr, page := s.call(http.MethodGet, "/onboardings?page=1&limit=10", reviewer, nil)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.Len(page["data"], 1)
	s.EqualValues(1, page["metadata"].(map[string]any)["totalPages"])
}

//go:build e2e

package common

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the scenario harness the shared steps need.
type TestContext interface {
	GET(path string) error
	AuthenticateAs(user, role string) error
	ClearAuthentication()
	LastStatus() int
	ResponseField(path string) (any, error)
}

// RegisterSteps registers authentication and response assertion steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}
	ctx.Step(`^I am authenticated as "([^"]*)" with role "([^"]*)"$`, steps.authenticatedAs)
	ctx.Step(`^I am not authenticated$`, steps.notAuthenticated)
	ctx.Step(`^I request "([^"]*)"$`, steps.request)
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) authenticatedAs(_ context.Context, user, role string) error {
	return s.tc.AuthenticateAs(user, role)
}

func (s *commonSteps) notAuthenticated(_ context.Context) error {
	s.tc.ClearAuthentication()
	return nil
}

func (s *commonSteps) request(_ context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) responseStatusShouldBe(_ context.Context, expected int) error {
	if got := s.tc.LastStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d", expected, got)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(_ context.Context, field, expected string) error {
	value, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("expected %s=%q, got %q", field, expected, got)
	}
	return nil
}

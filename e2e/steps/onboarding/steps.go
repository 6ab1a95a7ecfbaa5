//go:build e2e

package onboarding

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
)

// TestContext is the slice of the scenario harness the onboarding steps need.
type TestContext interface {
	GET(path string) error
	POST(path string, body any) error
	PATCH(path string, body any) error
	AuthenticateAs(user, role string) error
	LastStatus() int
	ResponseField(path string) (any, error)
	Set(key, value string)
	Get(key string) string
}

// RegisterSteps registers template, onboarding and decision steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &onboardingSteps{tc: tc}
	ctx.Step(`^template "([^"]*)" version (\d+) is published with section "([^"]*)" containing items "([^"]*)"$`, steps.templatePublished)
	ctx.Step(`^I start onboarding "([^"]*)" with checklist "([^"]*)"$`, steps.startOnboarding)
	ctx.Step(`^I mark "([^"]*)" / "([^"]*)" as "([^"]*)" noting "([^"]*)"$`, steps.markItem)
	ctx.Step(`^I record decision "([^"]*)" with notes "([^"]*)"$`, steps.recordDecision)
	ctx.Step(`^the onboarding status should be "([^"]*)"$`, steps.onboardingStatusShouldBe)
	ctx.Step(`^the account should be "([^"]*)"$`, steps.accountStatusShouldBe)
	ctx.Step(`^the checklist revision should be (\d+)$`, steps.checklistRevisionShouldBe)
}

type onboardingSteps struct {
	tc TestContext
}

func (s *onboardingSteps) templatePublished(_ context.Context, checklistType string, version int, section, items string) error {
	if err := s.tc.AuthenticateAs("template-admin", "admin"); err != nil {
		return err
	}
	var entries []map[string]any
	for _, title := range strings.Split(items, ",") {
		entries = append(entries, map[string]any{"title": strings.TrimSpace(title)})
	}
	body := map[string]any{
		"checklistType": checklistType,
		"versionNumber": version,
		"sections": []map[string]any{
			{"title": section, "items": entries},
		},
	}
	if err := s.tc.POST("/due-diligence-checklists", body); err != nil {
		return err
	}
	if got := s.tc.LastStatus(); got != 201 {
		return fmt.Errorf("publishing template: expected 201, got %d", got)
	}
	return nil
}

func (s *onboardingSteps) startOnboarding(_ context.Context, counterparty, checklistType string) error {
	body := map[string]any{
		"registrationId":   uuid.NewString(),
		"counterpartyName": counterparty,
		"checklistType":    checklistType,
	}
	if err := s.tc.POST("/onboardings", body); err != nil {
		return err
	}
	if s.tc.LastStatus() != 201 {
		return nil
	}
	for _, key := range []string{"id", "accountId", "checklistId"} {
		value, err := s.tc.ResponseField(key)
		if err != nil {
			return err
		}
		s.tc.Set(key, fmt.Sprint(value))
	}
	return nil
}

func (s *onboardingSteps) markItem(_ context.Context, section, item, status, note string) error {
	checklistID := s.tc.Get("checklistId")
	if checklistID == "" {
		return fmt.Errorf("no onboarding has been started")
	}
	updates := []map[string]any{{
		"sectionTitle": section,
		"itemTitle":    item,
		"status":       status,
		"notes":        []map[string]any{{"text": note}},
	}}
	return s.tc.PATCH("/due-diligence-checklists/"+checklistID+"/checklist", updates)
}

func (s *onboardingSteps) recordDecision(_ context.Context, decision, notes string) error {
	onboardingID := s.tc.Get("id")
	if onboardingID == "" {
		return fmt.Errorf("no onboarding has been started")
	}
	body := map[string]any{"decision": decision, "decisionNotes": notes}
	return s.tc.POST("/onboardings/"+onboardingID+"/decision", body)
}

func (s *onboardingSteps) onboardingStatusShouldBe(_ context.Context, expected string) error {
	return s.expectField("/onboardings/"+s.tc.Get("id"), "status", expected)
}

func (s *onboardingSteps) accountStatusShouldBe(_ context.Context, expected string) error {
	return s.expectField("/accounts/"+s.tc.Get("accountId"), "status", expected)
}

func (s *onboardingSteps) checklistRevisionShouldBe(_ context.Context, expected int) error {
	return s.expectField("/due-diligence-checklists/"+s.tc.Get("checklistId"), "revision", fmt.Sprint(expected))
}

func (s *onboardingSteps) expectField(path, field, expected string) error {
	if err := s.tc.GET(path); err != nil {
		return err
	}
	if got := s.tc.LastStatus(); got != 200 {
		return fmt.Errorf("GET %s: expected 200, got %d", path, got)
	}
	value, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("expected %s=%q, got %q", field, expected, got)
	}
	return nil
}

// Package models defines onboarding records and their one-shot decision.
package models

import (
	"strings"
	"time"

	id "duediligence/pkg/domain"
	dErrors "duediligence/pkg/domain-errors"
)

type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusComplete   Status = "COMPLETE"
)

type Decision string

const (
	DecisionPending  Decision = "PENDING"
	DecisionApproved Decision = "APPROVED"
	DecisionDeclined Decision = "DECLINED"
)

func (d Decision) IsTerminal() bool {
	return d == DecisionApproved || d == DecisionDeclined
}

func (d Decision) String() string {
	return string(d)
}

// Onboarding tracks one counterparty registration through review. Status is
// COMPLETE only once Decision has left PENDING, and Decision leaves PENDING
// exactly once.
type Onboarding struct {
	ID               id.OnboardingID   `json:"id"`
	RegistrationID   id.RegistrationID `json:"registrationId"`
	CounterpartyName string            `json:"counterpartyName"`
	AccountID        id.AccountID      `json:"accountId"`
	ChecklistID      id.ChecklistID    `json:"checklistId"`
	Status           Status            `json:"status"`
	Decision         Decision          `json:"decision"`
	DecisionNotes    string            `json:"decisionNotes,omitempty"`
	DecidedBy        id.UserID         `json:"decidedBy,omitempty"`
	DecidedAt        *time.Time        `json:"decidedAt,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// View pairs an onboarding with the current status of its account.
type View struct {
	*Onboarding
	AccountStatus string `json:"accountStatus"`
}

// DecisionInput is a validated request to leave PENDING.
type DecisionInput struct {
	Decision Decision
	Notes    string
}

// ParseDecision accepts the two terminal outcomes, matched exactly.
func ParseDecision(decision, notes string) (DecisionInput, error) {
	d := Decision(decision)
	if !d.IsTerminal() {
		return DecisionInput{}, dErrors.New(dErrors.CodeValidation, "decision must be APPROVED or DECLINED")
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return DecisionInput{}, dErrors.New(dErrors.CodeValidation, "decisionNotes are required")
	}
	return DecisionInput{Decision: d, Notes: notes}, nil
}

// Record applies a decision. The caller guarantees the onboarding is pending.
func (o *Onboarding) Record(in DecisionInput, decidedBy id.UserID, now time.Time) {
	o.Decision = in.Decision
	o.DecisionNotes = in.Notes
	o.DecidedBy = decidedBy
	o.DecidedAt = &now
	o.Status = StatusComplete
	o.UpdatedAt = now
}

// OrderByFields maps listing sort keys to their column names.
var OrderByFields = map[string]string{
	"createdAt":        "created_at",
	"updatedAt":        "updated_at",
	"counterpartyName": "counterparty_name",
	"status":           "status",
	"decision":         "decision",
}

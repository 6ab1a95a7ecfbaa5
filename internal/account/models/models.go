// Package models defines the counterparty account gated by onboarding decisions.
package models

import (
	"time"

	id "duediligence/pkg/domain"
	dErrors "duediligence/pkg/domain-errors"
)

type Status string

const (
	StatusInactive Status = "INACTIVE"
	StatusActive   Status = "ACTIVE"
)

func (s Status) String() string {
	return string(s)
}

// Account is created INACTIVE alongside its onboarding and becomes ACTIVE
// only through an approved decision.
type Account struct {
	ID               id.AccountID `json:"id"`
	CounterpartyName string       `json:"counterpartyName"`
	Status           Status       `json:"status"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

func NewAccount(counterpartyName string, now time.Time) *Account {
	return &Account{
		ID:               id.NewAccountID(),
		CounterpartyName: counterpartyName,
		Status:           StatusInactive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// Activate moves the account to ACTIVE. Activating twice is an invariant
// violation because a decision is recorded once.
func (a *Account) Activate(now time.Time) error {
	if a.IsActive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "account already active")
	}
	a.Status = StatusActive
	a.UpdatedAt = now
	return nil
}

// OrderByFields maps listing sort keys to their column names.
var OrderByFields = map[string]string{
	"createdAt":        "created_at",
	"updatedAt":        "updated_at",
	"counterpartyName": "counterparty_name",
	"status":           "status",
}

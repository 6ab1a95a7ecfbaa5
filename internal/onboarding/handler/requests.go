package handler

import (
	"strings"

	id "duediligence/pkg/domain"
	dErrors "duediligence/pkg/domain-errors"
)

type CreateOnboardingRequest struct {
	RegistrationID   string `json:"registrationId"`
	CounterpartyName string `json:"counterpartyName"`
	ChecklistType    string `json:"checklistType"`

	registrationID id.RegistrationID
}

func (r *CreateOnboardingRequest) Validate() error {
	parsed, err := id.ParseRegistrationID(strings.TrimSpace(r.RegistrationID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "registrationId must be a UUID")
	}
	r.registrationID = parsed
	r.CounterpartyName = strings.TrimSpace(r.CounterpartyName)
	r.ChecklistType = strings.TrimSpace(r.ChecklistType)
	if r.CounterpartyName == "" {
		return dErrors.New(dErrors.CodeValidation, "counterpartyName is required")
	}
	if r.ChecklistType == "" {
		return dErrors.New(dErrors.CodeValidation, "checklistType is required")
	}
	return nil
}

// DecisionRequest is validated by the service so the decision rules live in
// one place.
type DecisionRequest struct {
	Decision      string `json:"decision"`
	DecisionNotes string `json:"decisionNotes"`
}

func (r *DecisionRequest) Validate() error {
	return nil
}

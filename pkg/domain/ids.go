// Package domain holds typed identifiers shared across modules.
//
// UUID-backed IDs are distinct types so an AccountID can never be passed where
// an OnboardingID is expected. UserID is an opaque string issued by the
// identity provider (the JWT subject) and is not assumed to be a UUID.
package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "duediligence/pkg/domain-errors"
)

const maxUserIDLength = 128

type (
	OnboardingID   uuid.UUID
	ChecklistID    uuid.UUID
	AccountID      uuid.UUID
	RegistrationID uuid.UUID
	UserID         string
)

func NewOnboardingID() OnboardingID { return OnboardingID(uuid.New()) }
func NewChecklistID() ChecklistID   { return ChecklistID(uuid.New()) }
func NewAccountID() AccountID       { return AccountID(uuid.New()) }

func (i OnboardingID) String() string   { return uuid.UUID(i).String() }
func (i ChecklistID) String() string    { return uuid.UUID(i).String() }
func (i AccountID) String() string      { return uuid.UUID(i).String() }
func (i RegistrationID) String() string { return uuid.UUID(i).String() }
func (u UserID) String() string         { return string(u) }

func (i OnboardingID) IsNil() bool   { return uuid.UUID(i) == uuid.Nil }
func (i ChecklistID) IsNil() bool    { return uuid.UUID(i) == uuid.Nil }
func (i AccountID) IsNil() bool      { return uuid.UUID(i) == uuid.Nil }
func (i RegistrationID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (u UserID) IsEmpty() bool       { return u == "" }

func (i OnboardingID) MarshalText() ([]byte, error)   { return uuid.UUID(i).MarshalText() }
func (i ChecklistID) MarshalText() ([]byte, error)    { return uuid.UUID(i).MarshalText() }
func (i AccountID) MarshalText() ([]byte, error)      { return uuid.UUID(i).MarshalText() }
func (i RegistrationID) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }

func (i *OnboardingID) UnmarshalText(b []byte) error {
	return unmarshalUUID(b, (*uuid.UUID)(i))
}

func (i *ChecklistID) UnmarshalText(b []byte) error {
	return unmarshalUUID(b, (*uuid.UUID)(i))
}

func (i *AccountID) UnmarshalText(b []byte) error {
	return unmarshalUUID(b, (*uuid.UUID)(i))
}

func (i *RegistrationID) UnmarshalText(b []byte) error {
	return unmarshalUUID(b, (*uuid.UUID)(i))
}

func unmarshalUUID(b []byte, dst *uuid.UUID) error {
	parsed, err := parseUUID(string(b), "id")
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}

func ParseOnboardingID(s string) (OnboardingID, error) {
	u, err := parseUUID(s, "onboarding id")
	return OnboardingID(u), err
}

func ParseChecklistID(s string) (ChecklistID, error) {
	u, err := parseUUID(s, "checklist id")
	return ChecklistID(u), err
}

func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s, "account id")
	return AccountID(u), err
}

func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseUUID(s, "registration id")
	return RegistrationID(u), err
}

// ParseUserID accepts any printable identifier up to 128 bytes.
func ParseUserID(s string) (UserID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}
	if len(s) > maxUserIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id is too long")
	}
	if !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id must be valid UTF-8")
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "user id contains invalid characters")
		}
	}
	return UserID(s), nil
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must not be nil")
	}
	return u, nil
}

package models

import (
	dErrors "duediligence/pkg/domain-errors"
)

// ItemStatus is the review state of one checklist item.
type ItemStatus string

const (
	ItemStatusNotStarted   ItemStatus = "NOT_STARTED"
	ItemStatusInProgress   ItemStatus = "IN_PROGRESS"
	ItemStatusSatisfactory ItemStatus = "SATISFACTORY"
	ItemStatusAdverse      ItemStatus = "ADVERSE"
)

func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusNotStarted, ItemStatusInProgress, ItemStatusSatisfactory, ItemStatusAdverse:
		return true
	}
	return false
}

// IsReviewed reports whether the item has reached a reviewer verdict.
func (s ItemStatus) IsReviewed() bool {
	return s == ItemStatusSatisfactory || s == ItemStatusAdverse
}

func (s ItemStatus) String() string {
	return string(s)
}

// ParseItemStatus matches exactly; values are never case-folded or coerced.
func ParseItemStatus(v string) (ItemStatus, error) {
	s := ItemStatus(v)
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid item status: "+v)
	}
	return s, nil
}

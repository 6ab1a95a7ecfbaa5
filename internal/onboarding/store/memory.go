// Package store persists onboarding records.
package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"duediligence/internal/onboarding/models"
	id "duediligence/pkg/domain"
	"duediligence/pkg/pagination"
	"duediligence/pkg/platform/sentinel"
)

type InMemory struct {
	mu          sync.RWMutex
	onboardings map[id.OnboardingID]*models.Onboarding
}

func NewInMemory() *InMemory {
	return &InMemory{onboardings: make(map[id.OnboardingID]*models.Onboarding)}
}

func clone(o *models.Onboarding) *models.Onboarding {
	c := *o
	if o.DecidedAt != nil {
		t := *o.DecidedAt
		c.DecidedAt = &t
	}
	return &c
}

func (s *InMemory) Create(_ context.Context, o *models.Onboarding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.onboardings {
		if existing.RegistrationID == o.RegistrationID {
			return sentinel.ErrAlreadyUsed
		}
	}
	if _, ok := s.onboardings[o.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.onboardings[o.ID] = clone(o)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, onboardingID id.OnboardingID) (*models.Onboarding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.onboardings[onboardingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(o), nil
}

// MarkReviewStarted moves a NEW onboarding to IN_PROGRESS; other states are
// left alone.
func (s *InMemory) MarkReviewStarted(_ context.Context, onboardingID id.OnboardingID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.onboardings[onboardingID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if o.Status == models.StatusNew {
		o.Status = models.StatusInProgress
		o.UpdatedAt = now
	}
	return nil
}

// RecordDecision compares-and-sets the decision away from PENDING. When the
// onboarding has already been decided it returns ErrInvalidState.
func (s *InMemory) RecordDecision(_ context.Context, onboardingID id.OnboardingID, in models.DecisionInput, decidedBy id.UserID, now time.Time) (*models.Onboarding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.onboardings[onboardingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if o.Decision != models.DecisionPending {
		return nil, sentinel.ErrInvalidState
	}
	o.Record(in, decidedBy, now)
	return clone(o), nil
}

func (s *InMemory) List(_ context.Context, req pagination.Request) ([]*models.Onboarding, int, error) {
	s.mu.RLock()
	all := make([]*models.Onboarding, 0, len(s.onboardings))
	for _, o := range s.onboardings {
		all = append(all, clone(o))
	}
	s.mu.RUnlock()

	slices.SortStableFunc(all, func(a, b *models.Onboarding) int {
		c := compareOnboardings(a, b, req.OrderBy)
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		if req.OrderDirection == pagination.Desc {
			return -c
		}
		return c
	})
	return pagination.Slice(req, all), len(all), nil
}

func compareOnboardings(a, b *models.Onboarding, orderBy string) int {
	switch orderBy {
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "counterpartyName":
		return strings.Compare(a.CounterpartyName, b.CounterpartyName)
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	case "decision":
		return strings.Compare(string(a.Decision), string(b.Decision))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

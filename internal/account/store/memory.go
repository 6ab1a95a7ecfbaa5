// Package store persists counterparty accounts.
package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"duediligence/internal/account/models"
	id "duediligence/pkg/domain"
	"duediligence/pkg/pagination"
	"duediligence/pkg/platform/sentinel"
)

type InMemory struct {
	mu       sync.RWMutex
	accounts map[id.AccountID]*models.Account
}

func NewInMemory() *InMemory {
	return &InMemory{accounts: make(map[id.AccountID]*models.Account)}
}

func (s *InMemory) Create(_ context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	clone := *a
	s.accounts[a.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (s *InMemory) FindByIDs(_ context.Context, accountIDs []id.AccountID) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Account, 0, len(accountIDs))
	for _, accountID := range accountIDs {
		if a, ok := s.accounts[accountID]; ok {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}

// Activate flips an INACTIVE account to ACTIVE; an already active account is
// ErrInvalidState.
func (s *InMemory) Activate(_ context.Context, accountID id.AccountID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if a.IsActive() {
		return sentinel.ErrInvalidState
	}
	a.Status = models.StatusActive
	a.UpdatedAt = now
	return nil
}

func (s *InMemory) List(_ context.Context, req pagination.Request) ([]*models.Account, int, error) {
	s.mu.RLock()
	all := make([]*models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		clone := *a
		all = append(all, &clone)
	}
	s.mu.RUnlock()

	slices.SortStableFunc(all, func(a, b *models.Account) int {
		c := compareAccounts(a, b, req.OrderBy)
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

func compareAccounts(a, b *models.Account, orderBy string) int {
	switch orderBy {
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "counterpartyName":
		return strings.Compare(a.CounterpartyName, b.CounterpartyName)
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

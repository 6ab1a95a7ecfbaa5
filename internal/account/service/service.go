// Package service exposes read access to counterparty accounts.
package service

import (
	"context"
	"errors"
	"log/slog"

	"duediligence/internal/account/models"
	id "duediligence/pkg/domain"
	dErrors "duediligence/pkg/domain-errors"
	"duediligence/pkg/pagination"
	"duediligence/pkg/platform/sentinel"
	"duediligence/pkg/requestcontext"
)

type Store interface {
	FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	List(ctx context.Context, req pagination.Request) ([]*models.Account, int, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("account store is required")
	}
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) Get(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	a, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		s.logger.ErrorContext(ctx, "failed to load account",
			"account_id", accountID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "account store unavailable")
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, req pagination.Request) (pagination.Page[*models.Account], error) {
	accounts, total, err := s.store.List(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list accounts",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return pagination.Page[*models.Account]{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "account store unavailable")
	}
	return pagination.NewPage(req, accounts, total), nil
}

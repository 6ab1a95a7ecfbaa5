package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"duediligence/internal/account/models"
	"duediligence/internal/platform/postgres"
	id "duediligence/pkg/domain"
	"duediligence/pkg/pagination"
	"duediligence/pkg/platform/sentinel"
	txcontext "duediligence/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) txcontext.Execer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, a *models.Account) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO accounts (id, counterparty_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID.String(), a.CounterpartyName, string(a.Status), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, counterparty_name, status, created_at, updated_at
		FROM accounts WHERE id = $1
	`, accountID.String())
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return a, err
}

// FindByIDs loads several accounts in one round trip. Missing ids are skipped.
func (s *PostgresStore) FindByIDs(ctx context.Context, accountIDs []id.AccountID) ([]*models.Account, error) {
	ids := make([]string, len(accountIDs))
	for i, a := range accountIDs {
		ids[i] = a.String()
	}
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, counterparty_name, status, created_at, updated_at
		FROM accounts WHERE id = ANY($1::uuid[])
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("%w: query accounts: %v", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	var out []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Activate(ctx context.Context, accountID id.AccountID, now time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE accounts SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
	`, accountID.String(), string(models.StatusActive), now, string(models.StatusInactive))
	if err != nil {
		return fmt.Errorf("activate account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("activate account: %w", err)
	}
	if n == 0 {
		if _, err := s.FindByID(ctx, accountID); err != nil {
			return err
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, req pagination.Request) ([]*models.Account, int, error) {
	var total int
	if err := s.execer(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: count accounts: %v", sentinel.ErrUnavailable, err)
	}

	column, ok := models.OrderByFields[req.OrderBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if req.OrderDirection == pagination.Asc {
		direction = "ASC"
	}
	// column and direction come from fixed allow-lists.
	query := fmt.Sprintf(`
		SELECT id, counterparty_name, status, created_at, updated_at
		FROM accounts ORDER BY %s %s, id %s LIMIT $1 OFFSET $2
	`, column, direction, direction)

	rows, err := s.execer(ctx).QueryContext(ctx, query, req.Limit, req.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list accounts: %v", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	out := make([]*models.Account, 0, req.Limit)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*models.Account, error) {
	var (
		a      models.Account
		rawID  string
		status string
	)
	if err := row.Scan(&rawID, &a.CounterpartyName, &status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := id.ParseAccountID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan account id: %w", err)
	}
	a.ID = parsed
	a.Status = models.Status(status)
	return &a, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"duediligence/internal/onboarding/models"
	"duediligence/internal/platform/postgres"
	id "duediligence/pkg/domain"
	"duediligence/pkg/pagination"
	"duediligence/pkg/platform/sentinel"
	txcontext "duediligence/pkg/platform/tx"
)

const onboardingColumns = `id, registration_id, counterparty_name, account_id, checklist_id, status,
	decision, decision_notes, decided_by, decided_at, created_at, updated_at`

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

func (s *PostgresStore) Create(ctx context.Context, o *models.Onboarding) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO onboardings (id, registration_id, counterparty_name, account_id, checklist_id,
			status, decision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, o.ID.String(), o.RegistrationID.String(), o.CounterpartyName, o.AccountID.String(),
		o.ChecklistID.String(), string(o.Status), string(o.Decision), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert onboarding: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, onboardingID id.OnboardingID) (*models.Onboarding, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+onboardingColumns+` FROM onboardings WHERE id = $1`, onboardingID.String())
	o, err := scanOnboarding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return o, err
}

func (s *PostgresStore) MarkReviewStarted(ctx context.Context, onboardingID id.OnboardingID, now time.Time) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE onboardings SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
	`, onboardingID.String(), string(models.StatusInProgress), now, string(models.StatusNew))
	if err != nil {
		return fmt.Errorf("mark review started: %w", err)
	}
	return nil
}

// RecordDecision is a compare-and-set on decision = PENDING. Zero affected
// rows on an existing onboarding means another decision won.
func (s *PostgresStore) RecordDecision(ctx context.Context, onboardingID id.OnboardingID, in models.DecisionInput, decidedBy id.UserID, now time.Time) (*models.Onboarding, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		UPDATE onboardings
		SET decision = $2, decision_notes = $3, decided_by = $4, decided_at = $5,
			status = $6, updated_at = $5
		WHERE id = $1 AND decision = $7
		RETURNING `+onboardingColumns,
		onboardingID.String(), string(in.Decision), in.Notes, decidedBy.String(), now,
		string(models.StatusComplete), string(models.DecisionPending))
	o, err := scanOnboarding(row)
	if errors.Is(err, sql.ErrNoRows) {
		if _, findErr := s.FindByID(ctx, onboardingID); findErr != nil {
			return nil, findErr
		}
		return nil, sentinel.ErrInvalidState
	}
	if err != nil {
		return nil, fmt.Errorf("record decision: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) List(ctx context.Context, req pagination.Request) ([]*models.Onboarding, int, error) {
	var total int
	if err := s.execer(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM onboardings`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: count onboardings: %v", sentinel.ErrUnavailable, err)
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
	query := fmt.Sprintf(`SELECT %s FROM onboardings ORDER BY %s %s, id %s LIMIT $1 OFFSET $2`,
		onboardingColumns, column, direction, direction)

	rows, err := s.execer(ctx).QueryContext(ctx, query, req.Limit, req.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list onboardings: %v", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	out := make([]*models.Onboarding, 0, req.Limit)
	for rows.Next() {
		o, err := scanOnboarding(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOnboarding(row scanner) (*models.Onboarding, error) {
	var (
		o                                       models.Onboarding
		rawID, rawReg, rawAccount, rawChecklist string
		status, decision, decidedBy             string
		decidedAt                               sql.NullTime
	)
	if err := row.Scan(&rawID, &rawReg, &o.CounterpartyName, &rawAccount, &rawChecklist, &status,
		&decision, &o.DecisionNotes, &decidedBy, &decidedAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if o.ID, err = id.ParseOnboardingID(rawID); err != nil {
		return nil, fmt.Errorf("scan onboarding id: %w", err)
	}
	if o.RegistrationID, err = id.ParseRegistrationID(rawReg); err != nil {
		return nil, fmt.Errorf("scan registration id: %w", err)
	}
	if o.AccountID, err = id.ParseAccountID(rawAccount); err != nil {
		return nil, fmt.Errorf("scan account id: %w", err)
	}
	if o.ChecklistID, err = id.ParseChecklistID(rawChecklist); err != nil {
		return nil, fmt.Errorf("scan checklist id: %w", err)
	}
	o.Status = models.Status(status)
	o.Decision = models.Decision(decision)
	o.DecidedBy = id.UserID(decidedBy)
	if decidedAt.Valid {
		t := decidedAt.Time
		o.DecidedAt = &t
	}
	return &o, nil
}

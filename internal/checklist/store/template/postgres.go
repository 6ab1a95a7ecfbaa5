package template

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"duediligence/internal/checklist/models"
	"duediligence/internal/platform/postgres"
	"duediligence/pkg/platform/sentinel"
	txcontext "duediligence/pkg/platform/tx"
)

// PostgresStore keeps each template's sections as one JSONB document.
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

func (s *PostgresStore) Create(ctx context.Context, t *models.Template) error {
	sections, err := json.Marshal(t.Sections)
	if err != nil {
		return fmt.Errorf("marshal template sections: %w", err)
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO checklist_templates (checklist_type, version_number, sections, published_at)
		VALUES ($1, $2, $3, $4)
	`, t.ChecklistType, t.VersionNumber, sections, t.PublishedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, checklistType string, versionNumber int) (*models.Template, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT checklist_type, version_number, sections, published_at
		FROM checklist_templates
		WHERE checklist_type = $1 AND version_number = $2
	`, checklistType, versionNumber)
	return scanTemplate(row)
}

func (s *PostgresStore) Latest(ctx context.Context, checklistType string) (*models.Template, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT checklist_type, version_number, sections, published_at
		FROM checklist_templates
		WHERE checklist_type = $1
		ORDER BY version_number DESC
		LIMIT 1
	`, checklistType)
	return scanTemplate(row)
}

func scanTemplate(row *sql.Row) (*models.Template, error) {
	var (
		t        models.Template
		sections []byte
	)
	if err := row.Scan(&t.ChecklistType, &t.VersionNumber, &sections, &t.PublishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%w: query template: %v", sentinel.ErrUnavailable, err)
	}
	if err := json.Unmarshal(sections, &t.Sections); err != nil {
		return nil, fmt.Errorf("decode template sections: %w", err)
	}
	return &t, nil
}

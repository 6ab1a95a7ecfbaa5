package instance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"duediligence/internal/checklist/models"
	"duediligence/internal/platform/postgres"
	id "duediligence/pkg/domain"
	"duediligence/pkg/platform/sentinel"
	txcontext "duediligence/pkg/platform/tx"
)

// PostgresStore keeps items as rows and notes as insert-only rows, so
// concurrent appends never overwrite each other.
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

func (s *PostgresStore) Create(ctx context.Context, inst *models.Instance) error {
	return txcontext.Run(ctx, s.db, 0, func(ctx context.Context) error {
		ex := s.execer(ctx)
		_, err := ex.ExecContext(ctx, `
			INSERT INTO checklist_instances (id, onboarding_id, checklist_type, version_number, revision, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.UUID(inst.ID), uuid.UUID(inst.OnboardingID), inst.ChecklistType, inst.VersionNumber,
			inst.Revision, inst.CreatedAt, inst.UpdatedAt)
		if err != nil {
			if postgres.IsUniqueViolation(err) {
				return sentinel.ErrAlreadyUsed
			}
			return fmt.Errorf("insert checklist instance: %w", err)
		}

		for si, sec := range inst.Sections {
			for ii, item := range sec.Items {
				_, err := ex.ExecContext(ctx, `
					INSERT INTO checklist_items (
						instance_id, item_id, section_index, item_index,
						section_title, section_guidance, item_title, item_guidance, status, updated_at
					)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				`, uuid.UUID(inst.ID), item.ID, si, ii, sec.Title, sec.Guidance,
					item.Title, item.Guidance, string(item.Status), item.UpdatedAt)
				if err != nil {
					return fmt.Errorf("insert checklist item %s: %w", item.ID, err)
				}
			}
		}
		return nil
	})
}

func (s *PostgresStore) FindByID(ctx context.Context, instanceID id.ChecklistID) (*models.Instance, error) {
	inst, err := s.load(ctx, instanceID, false)
	if err != nil {
		return nil, err
	}
	if err := s.loadNotes(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// Lock reads the instance with its row locked until the caller's transaction
// ends, so no batch can land between a read and a dependent write.
func (s *PostgresStore) Lock(ctx context.Context, instanceID id.ChecklistID) (*models.Instance, error) {
	inst, err := s.load(ctx, instanceID, true)
	if err != nil {
		return nil, err
	}
	if err := s.loadNotes(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// Update locks the instance row for the duration of the transaction, plans
// against the locked state and writes the change set. The plan sees items
// without their notes.
func (s *PostgresStore) Update(ctx context.Context, instanceID id.ChecklistID, plan PlanFunc) (*models.ChangeSet, error) {
	var cs *models.ChangeSet
	err := txcontext.Run(ctx, s.db, 0, func(ctx context.Context) error {
		inst, err := s.load(ctx, instanceID, true)
		if err != nil {
			return err
		}
		cs, err = plan(inst)
		if err != nil {
			return err
		}

		ex := s.execer(ctx)
		for _, ch := range cs.Changes {
			var status *string
			if ch.Status != nil {
				v := string(*ch.Status)
				status = &v
			}
			if _, err := ex.ExecContext(ctx, `
				UPDATE checklist_items
				SET status = COALESCE($3, status), updated_at = $4
				WHERE instance_id = $1 AND item_id = $2
			`, uuid.UUID(instanceID), ch.ItemID, status, cs.UpdatedAt); err != nil {
				return fmt.Errorf("update checklist item %s: %w", ch.ItemID, err)
			}
			for _, n := range ch.Notes {
				if _, err := ex.ExecContext(ctx, `
					INSERT INTO checklist_item_notes (instance_id, item_id, text, author_id, created_at)
					VALUES ($1, $2, $3, $4, $5)
				`, uuid.UUID(instanceID), ch.ItemID, n.Text, n.AuthorID.String(), n.CreatedAt); err != nil {
					return fmt.Errorf("insert checklist note: %w", err)
				}
			}
		}

		if _, err := ex.ExecContext(ctx, `
			UPDATE checklist_instances SET revision = $2, updated_at = $3 WHERE id = $1
		`, uuid.UUID(instanceID), cs.Revision, cs.UpdatedAt); err != nil {
			return fmt.Errorf("bump checklist revision: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cs, nil
}

func (s *PostgresStore) load(ctx context.Context, instanceID id.ChecklistID, forUpdate bool) (*models.Instance, error) {
	query := `
		SELECT id, onboarding_id, checklist_type, version_number, revision, created_at, updated_at
		FROM checklist_instances
		WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	ex := s.execer(ctx)
	var (
		inst         models.Instance
		rawID, onbID uuid.UUID
	)
	err := ex.QueryRowContext(ctx, query, uuid.UUID(instanceID)).Scan(
		&rawID, &onbID, &inst.ChecklistType, &inst.VersionNumber, &inst.Revision, &inst.CreatedAt, &inst.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load checklist instance: %v", sentinel.ErrUnavailable, err)
	}
	inst.ID = id.ChecklistID(rawID)
	inst.OnboardingID = id.OnboardingID(onbID)

	rows, err := ex.QueryContext(ctx, `
		SELECT section_index, section_title, section_guidance, item_id, item_title, item_guidance, status, updated_at
		FROM checklist_items
		WHERE instance_id = $1
		ORDER BY section_index, item_index
	`, uuid.UUID(instanceID))
	if err != nil {
		return nil, fmt.Errorf("query checklist items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sectionIndex int
			sec          models.InstanceSection
			item         models.Item
			status       string
		)
		if err := rows.Scan(&sectionIndex, &sec.Title, &sec.Guidance, &item.ID, &item.Title, &item.Guidance, &status, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan checklist item: %w", err)
		}
		item.Status = models.ItemStatus(status)
		item.Notes = []models.Note{}
		for len(inst.Sections) <= sectionIndex {
			inst.Sections = append(inst.Sections, models.InstanceSection{})
		}
		target := &inst.Sections[sectionIndex]
		target.Title, target.Guidance = sec.Title, sec.Guidance
		target.Items = append(target.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checklist items: %w", err)
	}
	return &inst, nil
}

func (s *PostgresStore) loadNotes(ctx context.Context, inst *models.Instance) error {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT item_id, text, author_id, created_at
		FROM checklist_item_notes
		WHERE instance_id = $1
		ORDER BY id
	`, uuid.UUID(inst.ID))
	if err != nil {
		return fmt.Errorf("query checklist notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			itemID, author string
			n              models.Note
		)
		if err := rows.Scan(&itemID, &n.Text, &author, &n.CreatedAt); err != nil {
			return fmt.Errorf("scan checklist note: %w", err)
		}
		n.AuthorID = id.UserID(author)
		if item, ok := inst.Item(models.ItemRef{ItemID: itemID}); ok {
			item.Notes = append(item.Notes, n)
		}
	}
	return rows.Err()
}

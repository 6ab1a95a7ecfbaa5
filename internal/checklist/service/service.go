// Package service orchestrates checklist templates and instances.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	checklistmetrics "duediligence/internal/checklist/metrics"
	"duediligence/internal/checklist/models"
	"duediligence/internal/checklist/store/instance"
	id "duediligence/pkg/domain"
	dErrors "duediligence/pkg/domain-errors"
	"duediligence/pkg/platform/audit"
	"duediligence/pkg/platform/sentinel"
	txcontext "duediligence/pkg/platform/tx"
	"duediligence/pkg/requestcontext"
)

type TemplateStore interface {
	Create(ctx context.Context, t *models.Template) error
	Find(ctx context.Context, checklistType string, versionNumber int) (*models.Template, error)
	Latest(ctx context.Context, checklistType string) (*models.Template, error)
}

type InstanceStore interface {
	Create(ctx context.Context, inst *models.Instance) error
	FindByID(ctx context.Context, instanceID id.ChecklistID) (*models.Instance, error)
	Lock(ctx context.Context, instanceID id.ChecklistID) (*models.Instance, error)
	Update(ctx context.Context, instanceID id.ChecklistID, plan instance.PlanFunc) (*models.ChangeSet, error)
}

// ReviewProgress guards and tracks review work on an onboarding's checklist.
// EnsureOpen runs under the instance lock, before the batch is planned, and
// rejects batches once the onboarding has a decision.
type ReviewProgress interface {
	EnsureOpen(ctx context.Context, onboardingID id.OnboardingID) error
	MarkReviewStarted(ctx context.Context, onboardingID id.OnboardingID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns template publication and the status transition engine.
type Service struct {
	templates      TemplateStore
	instances      InstanceStore
	tx             txcontext.Runner
	progress       ReviewProgress
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *checklistmetrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *checklistmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithTxRunner(runner txcontext.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

func WithReviewProgress(p ReviewProgress) Option {
	return func(s *Service) {
		s.progress = p
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(templates TemplateStore, instances InstanceStore, opts ...Option) (*Service, error) {
	if templates == nil {
		return nil, errors.New("template store is required")
	}
	if instances == nil {
		return nil, errors.New("instance store is required")
	}
	s := &Service{
		templates: templates,
		instances: instances,
		logger:    slog.Default(),
		tracer:    otel.Tracer("duediligence/checklist"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = txcontext.NewMemoryRunner()
	}
	return s, nil
}

// =============================================================================
// Templates
// =============================================================================

// FetchTemplate returns the template for (checklistType, versionNumber).
// An unknown pair is found=false with a nil error; store faults are coded
// unavailable so callers can tell the two apart.
func (s *Service) FetchTemplate(ctx context.Context, checklistType string, versionNumber int) (*models.Template, bool, error) {
	ctx, span := s.tracer.Start(ctx, "checklist.FetchTemplate", trace.WithAttributes(
		attribute.String("checklist.type", checklistType),
		attribute.Int("checklist.version", versionNumber),
	))
	defer span.End()

	if err := models.ValidateKey(checklistType, versionNumber); err != nil {
		return nil, false, err
	}

	t, err := s.templates.Find(ctx, checklistType, versionNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		recordSpanError(span, err)
		s.logger.ErrorContext(ctx, "failed to fetch checklist template",
			"checklist_type", checklistType,
			"version_number", versionNumber,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, false, dErrors.Wrap(err, dErrors.CodeUnavailable, "template store unavailable")
	}
	return t, true, nil
}

// LatestTemplate resolves the current version of checklistType.
func (s *Service) LatestTemplate(ctx context.Context, checklistType string) (*models.Template, error) {
	if checklistType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "checklist type is required")
	}
	t, err := s.templates.Latest(ctx, checklistType)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no published template for checklist type %q", checklistType))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "template store unavailable")
	}
	return t, nil
}

// PublishTemplate validates and stores a new immutable template version.
func (s *Service) PublishTemplate(ctx context.Context, t *models.Template) (*models.Template, error) {
	ctx, span := s.tracer.Start(ctx, "checklist.PublishTemplate")
	defer span.End()

	t.Normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.PublishedAt = requestcontext.Now(ctx)

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.templates.Create(ctx, t); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict,
					fmt.Sprintf("template %s version %d already published", t.ChecklistType, t.VersionNumber))
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to publish template")
		}
		return s.emit(ctx, audit.Event{
			Subject: fmt.Sprintf("%s/%d", t.ChecklistType, t.VersionNumber),
			Action:  string(audit.EventTemplatePublished),
		})
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	s.metrics.IncTemplatePublished()
	s.logger.InfoContext(ctx, "checklist template published",
		"checklist_type", t.ChecklistType,
		"version_number", t.VersionNumber,
		"items", t.ItemCount(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return t, nil
}

// =============================================================================
// Instances
// =============================================================================

// CreateInstance seeds a new instance from tmpl for onboardingID. It joins the
// caller's transaction when one is on the context.
func (s *Service) CreateInstance(ctx context.Context, onboardingID id.OnboardingID, tmpl *models.Template) (*models.Instance, error) {
	inst := models.NewInstance(id.NewChecklistID(), onboardingID, tmpl, requestcontext.Now(ctx))
	if err := s.instances.Create(ctx, inst); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create checklist instance")
	}
	return inst, nil
}

func (s *Service) GetInstance(ctx context.Context, instanceID id.ChecklistID) (*models.Instance, error) {
	inst, err := s.instances.FindByID(ctx, instanceID)
	if err != nil {
		return nil, wrapInstanceErr(err)
	}
	return inst, nil
}

// LockInstance returns the instance locked for the caller's transaction.
// Decisions read the checklist through it so the reviewed check holds until
// commit.
func (s *Service) LockInstance(ctx context.Context, instanceID id.ChecklistID) (*models.Instance, error) {
	inst, err := s.instances.Lock(ctx, instanceID)
	if err != nil {
		return nil, wrapInstanceErr(err)
	}
	return inst, nil
}

// ApplyUpdates validates and applies one batch atomically. Callers refetch
// the instance to see the result.
func (s *Service) ApplyUpdates(ctx context.Context, instanceID id.ChecklistID, batch models.Batch) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "checklist.ApplyUpdates", trace.WithAttributes(
		attribute.String("checklist.id", instanceID.String()),
		attribute.Int("checklist.updates", len(batch.Updates)),
	))
	defer span.End()

	actor := requestcontext.UserID(ctx)
	now := requestcontext.Now(ctx)

	var (
		cs           *models.ChangeSet
		onboardingID id.OnboardingID
		firstBatch   bool
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		cs, err = s.instances.Update(ctx, instanceID, func(inst *models.Instance) (*models.ChangeSet, error) {
			onboardingID = inst.OnboardingID
			firstBatch = inst.Revision == 1
			if s.progress != nil {
				if err := s.progress.EnsureOpen(ctx, onboardingID); err != nil {
					return nil, err
				}
			}
			return inst.Plan(batch, actor, now)
		})
		if err != nil {
			return err
		}
		if firstBatch && s.progress != nil {
			if err := s.progress.MarkReviewStarted(ctx, onboardingID); err != nil {
				return err
			}
		}
		return s.emit(ctx, audit.Event{
			Subject: onboardingID.String(),
			Action:  string(audit.EventChecklistUpdated),
			Reason:  fmt.Sprintf("revision %d", cs.Revision),
		})
	})
	if err != nil {
		err = wrapInstanceErr(err)
		recordSpanError(span, err)
		s.metrics.IncRejected(string(dErrors.CodeOf(err)))
		if dErrors.CodeOf(err) == dErrors.CodeInternal || dErrors.CodeOf(err) == dErrors.CodeUnavailable {
			s.logger.ErrorContext(ctx, "failed to apply checklist updates",
				"checklist_id", instanceID,
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		return err
	}

	s.metrics.ObserveApplied(cs.StatusesChanged(), cs.NotesAdded(), start)
	s.logger.InfoContext(ctx, "checklist updates applied",
		"checklist_id", instanceID,
		"revision", cs.Revision,
		"items", len(cs.Changes),
		"notes", cs.NotesAdded(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditPublisher == nil {
		return nil
	}
	return s.auditPublisher.Emit(ctx, event)
}

// wrapInstanceErr passes coded errors through and translates store sentinels.
func wrapInstanceErr(err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "checklist instance not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "checklist store unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "checklist update timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update checklist")
	}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

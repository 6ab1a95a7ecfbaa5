// Package service runs onboarding records and the decision gate that
// controls account activation.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AccountStore,Checklists,AuditPublisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	accountmodels "duediligence/internal/account/models"
	checklistmodels "duediligence/internal/checklist/models"
	onboardingmetrics "duediligence/internal/onboarding/metrics"
	"duediligence/internal/onboarding/models"
	id "duediligence/pkg/domain"
	dErrors "duediligence/pkg/domain-errors"
	"duediligence/pkg/pagination"
	"duediligence/pkg/platform/audit"
	"duediligence/pkg/platform/sentinel"
	txcontext "duediligence/pkg/platform/tx"
	"duediligence/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, o *models.Onboarding) error
	FindByID(ctx context.Context, onboardingID id.OnboardingID) (*models.Onboarding, error)
	MarkReviewStarted(ctx context.Context, onboardingID id.OnboardingID, now time.Time) error
	RecordDecision(ctx context.Context, onboardingID id.OnboardingID, in models.DecisionInput, decidedBy id.UserID, now time.Time) (*models.Onboarding, error)
	List(ctx context.Context, req pagination.Request) ([]*models.Onboarding, int, error)
}

type AccountStore interface {
	Create(ctx context.Context, a *accountmodels.Account) error
	FindByID(ctx context.Context, accountID id.AccountID) (*accountmodels.Account, error)
	FindByIDs(ctx context.Context, accountIDs []id.AccountID) ([]*accountmodels.Account, error)
	Activate(ctx context.Context, accountID id.AccountID, now time.Time) error
}

// Checklists is the slice of the checklist service onboarding depends on.
type Checklists interface {
	LatestTemplate(ctx context.Context, checklistType string) (*checklistmodels.Template, error)
	CreateInstance(ctx context.Context, onboardingID id.OnboardingID, tmpl *checklistmodels.Template) (*checklistmodels.Instance, error)
	LockInstance(ctx context.Context, instanceID id.ChecklistID) (*checklistmodels.Instance, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store          Store
	accounts       AccountStore
	checklists     Checklists
	tx             txcontext.Runner
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *onboardingmetrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *onboardingmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithTxRunner sets the runner shared with the checklist and account stores.
func WithTxRunner(runner txcontext.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(store Store, accounts AccountStore, checklists Checklists, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("onboarding store is required")
	}
	if accounts == nil {
		return nil, errors.New("account store is required")
	}
	if checklists == nil {
		return nil, errors.New("checklist service is required")
	}
	s := &Service{
		store:      store,
		accounts:   accounts,
		checklists: checklists,
		logger:     slog.Default(),
		tracer:     otel.Tracer("duediligence/onboarding"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = txcontext.NewMemoryRunner()
	}
	return s, nil
}

// CreateInput starts review of one counterparty registration.
type CreateInput struct {
	RegistrationID   id.RegistrationID
	CounterpartyName string
	ChecklistType    string
}

// Create resolves the latest template for ChecklistType and creates the
// INACTIVE account, the checklist instance and the onboarding record together.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.View, error) {
	ctx, span := s.tracer.Start(ctx, "onboarding.Create", trace.WithAttributes(
		attribute.String("checklist.type", in.ChecklistType),
	))
	defer span.End()

	in.CounterpartyName = strings.TrimSpace(in.CounterpartyName)
	if in.RegistrationID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "registrationId is required")
	}
	if in.CounterpartyName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "counterpartyName is required")
	}

	now := requestcontext.Now(ctx)
	var (
		record  *models.Onboarding
		account *accountmodels.Account
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		tmpl, err := s.checklists.LatestTemplate(ctx, in.ChecklistType)
		if err != nil {
			return err
		}

		account = accountmodels.NewAccount(in.CounterpartyName, now)
		if err := s.accounts.Create(ctx, account); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
		}

		onboardingID := id.NewOnboardingID()
		inst, err := s.checklists.CreateInstance(ctx, onboardingID, tmpl)
		if err != nil {
			return err
		}

		record = &models.Onboarding{
			ID:               onboardingID,
			RegistrationID:   in.RegistrationID,
			CounterpartyName: in.CounterpartyName,
			AccountID:        account.ID,
			ChecklistID:      inst.ID,
			Status:           models.StatusNew,
			Decision:         models.DecisionPending,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.store.Create(ctx, record); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "registration already has an onboarding")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create onboarding")
		}
		return s.emit(ctx, audit.Event{
			Subject: onboardingID.String(),
			Action:  string(audit.EventOnboardingCreated),
			Reason:  fmt.Sprintf("%s v%d", tmpl.ChecklistType, tmpl.VersionNumber),
		})
	})
	if err != nil {
		recordSpanError(span, err)
		s.logUnexpected(ctx, "failed to create onboarding", err)
		return nil, err
	}

	s.metrics.IncCreated()
	s.logger.InfoContext(ctx, "onboarding created",
		"onboarding_id", record.ID,
		"account_id", record.AccountID,
		"checklist_id", record.ChecklistID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.View{Onboarding: record, AccountStatus: account.Status.String()}, nil
}

func (s *Service) Get(ctx context.Context, onboardingID id.OnboardingID) (*models.View, error) {
	o, err := s.store.FindByID(ctx, onboardingID)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	a, err := s.accounts.FindByID(ctx, o.AccountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load onboarding account")
	}
	return &models.View{Onboarding: o, AccountStatus: a.Status.String()}, nil
}

func (s *Service) List(ctx context.Context, req pagination.Request) (pagination.Page[*models.View], error) {
	records, total, err := s.store.List(ctx, req)
	if err != nil {
		s.logUnexpected(ctx, "failed to list onboardings", err)
		return pagination.Page[*models.View]{}, translateStoreErr(err)
	}

	accountIDs := make([]id.AccountID, len(records))
	for i, o := range records {
		accountIDs[i] = o.AccountID
	}
	accounts, err := s.accounts.FindByIDs(ctx, accountIDs)
	if err != nil {
		s.logUnexpected(ctx, "failed to load onboarding accounts", err)
		return pagination.Page[*models.View]{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "account store unavailable")
	}
	statuses := make(map[id.AccountID]string, len(accounts))
	for _, a := range accounts {
		statuses[a.ID] = a.Status.String()
	}

	views := make([]*models.View, len(records))
	for i, o := range records {
		views[i] = &models.View{Onboarding: o, AccountStatus: statuses[o.AccountID]}
	}
	return pagination.NewPage(req, views, total), nil
}

// Decide records the one-shot decision. The caller must hold the approver
// role, the decision must still be pending and every checklist item must be
// SATISFACTORY or ADVERSE. APPROVED activates the account.
func (s *Service) Decide(ctx context.Context, onboardingID id.OnboardingID, decision, notes string) (*models.View, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "onboarding.Decide", trace.WithAttributes(
		attribute.String("onboarding.id", onboardingID.String()),
		attribute.String("onboarding.decision", decision),
	))
	defer span.End()

	view, err := s.decide(ctx, onboardingID, decision, notes)
	if err != nil {
		recordSpanError(span, err)
		s.metrics.IncRejected(string(dErrors.CodeOf(err)))
		s.logUnexpected(ctx, "failed to record decision", err)
		return nil, err
	}

	activated := view.Decision == models.DecisionApproved
	s.metrics.ObserveDecision(view.Decision.String(), activated, start)
	s.logger.InfoContext(ctx, "onboarding decision recorded",
		"onboarding_id", onboardingID,
		"decision", view.Decision,
		"decided_by", view.DecidedBy,
		"account_activated", activated,
		"request_id", requestcontext.RequestID(ctx),
	)
	return view, nil
}

func (s *Service) decide(ctx context.Context, onboardingID id.OnboardingID, decision, notes string) (*models.View, error) {
	if !requestcontext.HasRole(ctx, requestcontext.RoleApprover) {
		return nil, dErrors.New(dErrors.CodeForbidden, "approver role required")
	}
	in, err := models.ParseDecision(decision, notes)
	if err != nil {
		return nil, err
	}
	actor := requestcontext.UserID(ctx)
	now := requestcontext.Now(ctx)

	var view *models.View
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.FindByID(ctx, onboardingID)
		if err != nil {
			return translateStoreErr(err)
		}
		if current.Decision != models.DecisionPending {
			return errDecisionRecorded()
		}

		inst, err := s.checklists.LockInstance(ctx, current.ChecklistID)
		if err != nil {
			return err
		}
		if !inst.IsReviewed() {
			return dErrors.WithDetails(dErrors.CodePreconditionFailed, "checklist incomplete", inst.PendingItems())
		}

		account, err := s.accounts.FindByID(ctx, current.AccountID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load onboarding account")
		}

		decided, err := s.store.RecordDecision(ctx, onboardingID, in, actor, now)
		if err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				return errDecisionRecorded()
			}
			return translateStoreErr(err)
		}

		if err := s.emit(ctx, audit.Event{
			Subject:  onboardingID.String(),
			Action:   string(audit.EventDecisionMade),
			Decision: in.Decision.String(),
			Reason:   in.Notes,
		}); err != nil {
			return err
		}

		if in.Decision == models.DecisionApproved {
			if err := s.accounts.Activate(ctx, account.ID, now); err != nil {
				if errors.Is(err, sentinel.ErrInvalidState) {
					return dErrors.New(dErrors.CodeInvariantViolation, "account already active")
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to activate account")
			}
			account.Status = accountmodels.StatusActive
			if err := s.emit(ctx, audit.Event{
				Subject: onboardingID.String(),
				Action:  string(audit.EventAccountActivated),
				Reason:  account.ID.String(),
			}); err != nil {
				return err
			}
		}

		view = &models.View{Onboarding: decided, AccountStatus: account.Status.String()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func errDecisionRecorded() error {
	return dErrors.New(dErrors.CodePreconditionFailed, "decision already recorded")
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditPublisher == nil {
		return nil
	}
	return s.auditPublisher.Emit(ctx, event)
}

// logUnexpected logs failures that are not the caller's fault.
func (s *Service) logUnexpected(ctx context.Context, msg string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable, dErrors.CodeTimeout, dErrors.CodeInvariantViolation:
		s.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func translateStoreErr(err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "onboarding not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "onboarding store unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "onboarding operation timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "onboarding store failure")
	}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// ReviewTracker moves an onboarding to IN_PROGRESS once review starts on its
// checklist and closes the checklist once a decision is recorded.
type ReviewTracker struct {
	store interface {
		FindByID(ctx context.Context, onboardingID id.OnboardingID) (*models.Onboarding, error)
		MarkReviewStarted(ctx context.Context, onboardingID id.OnboardingID, now time.Time) error
	}
}

func NewReviewTracker(store Store) *ReviewTracker {
	return &ReviewTracker{store: store}
}

// EnsureOpen rejects checklist batches for an onboarding that already has a
// decision. Checklists without an onboarding record are left open.
func (t *ReviewTracker) EnsureOpen(ctx context.Context, onboardingID id.OnboardingID) error {
	o, err := t.store.FindByID(ctx, onboardingID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil
	case err != nil:
		return translateStoreErr(err)
	}
	if o.Decision.IsTerminal() {
		return errDecisionRecorded()
	}
	return nil
}

func (t *ReviewTracker) MarkReviewStarted(ctx context.Context, onboardingID id.OnboardingID) error {
	err := t.store.MarkReviewStarted(ctx, onboardingID, requestcontext.Now(ctx))
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	return err
}

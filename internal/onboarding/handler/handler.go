// Package handler serves onboarding records and the decision endpoint.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"duediligence/internal/onboarding/models"
	"duediligence/internal/onboarding/service"
	"duediligence/internal/platform/middleware"
	id "duediligence/pkg/domain"
	dErrors "duediligence/pkg/domain-errors"
	"duediligence/pkg/pagination"
	"duediligence/pkg/platform/httputil"
	"duediligence/pkg/requestcontext"
)

type Service interface {
	Create(ctx context.Context, in service.CreateInput) (*models.View, error)
	Get(ctx context.Context, onboardingID id.OnboardingID) (*models.View, error)
	List(ctx context.Context, req pagination.Request) (pagination.Page[*models.View], error)
	Decide(ctx context.Context, onboardingID id.OnboardingID, decision, notes string) (*models.View, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/onboardings", func(r chi.Router) {
		r.With(middleware.RequireRole(h.logger, requestcontext.RoleReviewer, requestcontext.RoleAdmin)).
			Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/{onboardingId}", h.HandleGet)
		r.With(middleware.RequireRole(h.logger, requestcontext.RoleApprover)).
			Post("/{onboardingId}/decision", h.HandleDecide)
	})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateOnboardingRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	view, err := h.service.Create(ctx, service.CreateInput{
		RegistrationID:   req.registrationID,
		CounterpartyName: req.CounterpartyName,
		ChecklistType:    req.ChecklistType,
	})
	if err != nil {
		h.logFailure(ctx, "failed to create onboarding", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := pagination.FromQuery(r.URL.Query(), orderByKeys()...)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	page, err := h.service.List(ctx, req)
	if err != nil {
		h.logFailure(ctx, "failed to list onboardings", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	onboardingID, err := id.ParseOnboardingID(chi.URLParam(r, "onboardingId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.service.Get(ctx, onboardingID)
	if err != nil {
		h.logFailure(ctx, "failed to get onboarding", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	onboardingID, err := id.ParseOnboardingID(chi.URLParam(r, "onboardingId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DecisionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	view, err := h.service.Decide(ctx, onboardingID, req.Decision, req.DecisionNotes)
	if err != nil {
		h.logFailure(ctx, "failed to record decision", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable, dErrors.CodeTimeout, dErrors.CodeInvariantViolation:
		h.logger.ErrorContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	default:
		h.logger.WarnContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	}
}

func orderByKeys() []string {
	keys := make([]string, 0, len(models.OrderByFields))
	for k := range models.OrderByFields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Package handler exposes checklist templates and instances over HTTP.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"duediligence/internal/checklist/models"
	"duediligence/internal/platform/middleware"
	id "duediligence/pkg/domain"
	dErrors "duediligence/pkg/domain-errors"
	"duediligence/pkg/platform/httputil"
	"duediligence/pkg/requestcontext"
)

// Service is the checklist behaviour the handler needs.
type Service interface {
	FetchTemplate(ctx context.Context, checklistType string, versionNumber int) (*models.Template, bool, error)
	PublishTemplate(ctx context.Context, t *models.Template) (*models.Template, error)
	GetInstance(ctx context.Context, instanceID id.ChecklistID) (*models.Instance, error)
	ApplyUpdates(ctx context.Context, instanceID id.ChecklistID, batch models.Batch) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the checklist routes. Authentication is applied by the
// enclosing router; roles are enforced here.
func (h *Handler) Register(r chi.Router) {
	r.Route("/due-diligence-checklists", func(r chi.Router) {
		r.With(middleware.RequireRole(h.logger, requestcontext.RoleAdmin)).Post("/", h.HandlePublishTemplate)
		r.Get("/{checklistType}/{versionNumber}", h.HandleGetTemplate)
		r.Get("/{instanceId}", h.HandleGetInstance)
		r.With(middleware.RequireRole(h.logger, requestcontext.RoleReviewer, requestcontext.RoleAdmin)).
			Patch("/{instanceId}/checklist", h.HandleApplyUpdates)
	})
}

func (h *Handler) HandleGetTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checklistType := chi.URLParam(r, "checklistType")
	versionNumber, err := strconv.Atoi(chi.URLParam(r, "versionNumber"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "versionNumber must be an integer"))
		return
	}

	tmpl, found, err := h.service.FetchTemplate(ctx, checklistType, versionNumber)
	if err != nil {
		h.logFailure(ctx, "failed to fetch template", err)
		httputil.WriteError(w, err)
		return
	}
	if !found {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "checklist template not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tmpl)
}

func (h *Handler) HandlePublishTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PublishTemplateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tmpl, err := h.service.PublishTemplate(ctx, req.ToModel())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to publish template",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tmpl)
}

func (h *Handler) HandleGetInstance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	instanceID, err := id.ParseChecklistID(chi.URLParam(r, "instanceId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	inst, err := h.service.GetInstance(ctx, instanceID)
	if err != nil {
		h.logFailure(ctx, "failed to get checklist instance", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toInstanceResponse(inst))
}

func (h *Handler) HandleApplyUpdates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	instanceID, err := id.ParseChecklistID(chi.URLParam(r, "instanceId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateChecklistRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.ApplyUpdates(ctx, instanceID, req.ToBatch()); err != nil {
		h.logFailure(ctx, "failed to apply checklist updates", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// logFailure logs client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable, dErrors.CodeTimeout:
		h.logger.ErrorContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	default:
		h.logger.WarnContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	}
}

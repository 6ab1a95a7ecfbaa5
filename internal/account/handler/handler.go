// Package handler serves the account read endpoints.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"duediligence/internal/account/models"
	id "duediligence/pkg/domain"
	"duediligence/pkg/pagination"
	"duediligence/pkg/platform/httputil"
	"duediligence/pkg/requestcontext"
)

type Service interface {
	Get(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	List(ctx context.Context, req pagination.Request) (pagination.Page[*models.Account], error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/accounts", h.HandleList)
	r.Get("/accounts/{accountId}", h.HandleGet)
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
		h.logger.ErrorContext(ctx, "failed to list accounts", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, err := id.ParseAccountID(chi.URLParam(r, "accountId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	a, err := h.service.Get(ctx, accountID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to get account", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

func orderByKeys() []string {
	keys := make([]string, 0, len(models.OrderByFields))
	for k := range models.OrderByFields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sproutlane/microfarm-backend/api/responses"
	"github.com/sproutlane/microfarm-backend/api/validators"
	internalorders "github.com/sproutlane/microfarm-backend/internal/orders"
	"github.com/sproutlane/microfarm-backend/internal/recurrence"
	pkgerrors "github.com/sproutlane/microfarm-backend/pkg/errors"
	"github.com/sproutlane/microfarm-backend/pkg/logger"
	"github.com/sproutlane/microfarm-backend/pkg/pagination"
)

// ListTemplates returns recurring order templates.
func ListTemplates(repo internalorders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		list, err := repo.ListOrders(r.Context(), params, internalorders.OrderFilters{TemplatesOnly: true})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list templates"))
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ActivateTemplate resumes generation for a paused template.
func ActivateTemplate(svc recurrence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateID, err := validators.ParsePathUUID(chi.URLParam(r, "templateId"), "templateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.ActivateTemplate(r.Context(), templateID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "active"})
	}
}

// DeactivateTemplate pauses generation without touching past orders.
func DeactivateTemplate(svc recurrence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateID, err := validators.ParsePathUUID(chi.URLParam(r, "templateId"), "templateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeactivateTemplate(r.Context(), templateID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "inactive"})
	}
}

// RunRecurrence triggers a scheduler pass outside the cron cadence. The
// duplicate guard makes overlapping passes safe.
func RunRecurrence(svc recurrence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.ProcessRecurringOrders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

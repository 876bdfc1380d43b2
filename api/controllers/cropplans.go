package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sproutlane/microfarm-backend/api/responses"
	"github.com/sproutlane/microfarm-backend/api/validators"
	"github.com/sproutlane/microfarm-backend/internal/cropplans"
	"github.com/sproutlane/microfarm-backend/pkg/logger"
)

// ApproveCropPlan moves a draft plan to active and creates its crops.
func ApproveCropPlan(svc cropplans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		planID, err := validators.ParsePathUUID(chi.URLParam(r, "planId"), "planId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.ApprovePlan(r.Context(), planID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "active"})
	}
}

type cancelPlanRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// CancelCropPlan cancels a plan that has no crops attached yet.
func CancelCropPlan(svc cropplans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		planID, err := validators.ParsePathUUID(chi.URLParam(r, "planId"), "planId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cancelPlanRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.CancelPlan(r.Context(), planID, req.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

// RecalculateCropBatch re-derives batch totals from its plans.
func RecalculateCropBatch(svc cropplans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batchID, err := validators.ParsePathUUID(chi.URLParam(r, "batchId"), "batchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		batch, err := svc.RecalculateAggregation(r.Context(), batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batch)
	}
}

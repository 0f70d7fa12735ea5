package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dcastellanos/festivo-backend/api/responses"
	"github.com/dcastellanos/festivo-backend/api/validators"
	"github.com/dcastellanos/festivo-backend/internal/admin"
	"github.com/dcastellanos/festivo-backend/internal/settings"
	"github.com/dcastellanos/festivo-backend/internal/transactions"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
	"github.com/dcastellanos/festivo-backend/pkg/logger"
)

type rejectServiceRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type defaultCityRequest struct {
	CityID string `json:"city_id" validate:"required,uuid"`
}

// AdminListServices returns listings for moderation, optionally filtered
// by status.
func AdminListServices(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status *enums.ServiceStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			s := enums.ServiceStatus(raw)
			status = &s
		}

		services, err := svc.ListServices(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, services)
	}
}

// AdminApproveService publishes a pending listing.
func AdminApproveService(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		service, err := svc.ApproveService(r.Context(), serviceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, service)
	}
}

// AdminRejectService takes a listing down with a reason for the owner.
func AdminRejectService(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req rejectServiceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		service, err := svc.RejectService(r.Context(), serviceID, req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, service)
	}
}

// AdminListUsers returns accounts, optionally filtered by role.
func AdminListUsers(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var role *string
		if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
			role = &raw
		}

		users, err := svc.ListUsers(r.Context(), role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, users)
	}
}

// AdminDeactivateUser disables an account. Repeats are no-ops.
func AdminDeactivateUser(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeactivateUser(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AdminGetDefaultCity returns the platform-wide default city.
func AdminGetDefaultCity(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		city, err := svc.GetDefaultCity(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, city)
	}
}

// AdminSetDefaultCity overwrites the platform-wide default city.
func AdminSetDefaultCity(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req defaultCityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cityID, err := parseUUID(req.CityID, "city_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		city, err := svc.SetDefaultCity(r.Context(), cityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, city)
	}
}

// AdminProcessPayouts runs one payout batch on demand and returns the
// run report.
func AdminProcessPayouts(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.ProcessPayouts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

package controllers

import (
	"io"
	"net/http"
	"strings"

	"github.com/dcastellanos/festivo-backend/api/responses"
	"github.com/dcastellanos/festivo-backend/internal/providers"
	"github.com/dcastellanos/festivo-backend/pkg/logger"
)

// maxWebhookBody caps PayPal webhook payloads at 1 MiB.
const maxWebhookBody = 1 << 20

func providersActor(r *http.Request) (providers.Actor, error) {
	userID, role, err := requestActor(r)
	if err != nil {
		return providers.Actor{}, err
	}
	return providers.Actor{UserID: userID, Role: role}, nil
}

// GetProviderProfile returns the caller's provider profile.
func GetProviderProfile(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := providersActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.GetProfile(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// CreateOnboardingLink starts or resumes PayPal partner onboarding.
func CreateOnboardingLink(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := providersActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		link, err := svc.CreateOnboardingLink(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, link)
	}
}

// PayPalOnboardingCallback is the unauthenticated return redirect from
// PayPal after a seller finishes onboarding.
func PayPalOnboardingCallback(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		params := providers.CallbackParams{
			TrackingID:         strings.TrimSpace(query.Get("merchantId")),
			MerchantID:         strings.TrimSpace(query.Get("merchantIdInPayPal")),
			PermissionsGranted: query.Get("permissionsGranted") == "true",
		}
		if params.TrackingID == "" || params.MerchantID == "" {
			responses.WriteError(r.Context(), logg, w, validationError("merchantId and merchantIdInPayPal are required"))
			return
		}

		if err := svc.HandleOnboardingCallback(r.Context(), params); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"onboarded": true})
	}
}

// PayPalWebhook receives partner event deliveries. The raw body is handed
// to the service so redeliveries dedupe on the event id.
func PayPalWebhook(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, validationError("unreadable webhook body"))
			return
		}

		if err := svc.HandleWebhook(r.Context(), payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

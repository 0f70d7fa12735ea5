package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dcastellanos/festivo-backend/api/responses"
	"github.com/dcastellanos/festivo-backend/api/validators"
	"github.com/dcastellanos/festivo-backend/internal/offers"
	"github.com/dcastellanos/festivo-backend/pkg/logger"
)

type createOfferRequest struct {
	Price   string  `json:"price" validate:"required"`
	Message *string `json:"message,omitempty"`
}

func offersActor(r *http.Request) (offers.Actor, error) {
	userID, role, err := requestActor(r)
	if err != nil {
		return offers.Actor{}, err
	}
	return offers.Actor{UserID: userID, Role: role}, nil
}

// CreateOffer submits a provider quote against a party service.
func CreateOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := offersActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		partyServiceID, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createOfferRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, validationError("price must be a decimal"))
			return
		}

		offer, err := svc.Create(r.Context(), actor, offers.CreateParams{
			PartyServiceID: partyServiceID,
			Price:          price,
			Message:        req.Message,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, offer)
	}
}

// ListPartyServiceOffers returns the quotes for one party service.
func ListPartyServiceOffers(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := offersActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		partyServiceID, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForPartyService(r.Context(), actor, partyServiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ApproveOffer accepts a quote and opens its transaction.
func ApproveOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := offersActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offerID, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Approve(r.Context(), actor, offerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// RejectOffer declines a quote.
func RejectOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := offersActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offerID, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.Reject(r.Context(), actor, offerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

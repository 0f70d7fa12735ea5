package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dcastellanos/festivo-backend/api/responses"
	"github.com/dcastellanos/festivo-backend/api/validators"
	"github.com/dcastellanos/festivo-backend/internal/parties"
	"github.com/dcastellanos/festivo-backend/pkg/logger"
)

type createPartyRequest struct {
	Name   string    `json:"name" validate:"required"`
	CityID string    `json:"city_id" validate:"required,uuid"`
	Date   time.Time `json:"date" validate:"required"`
}

type attachServiceRequest struct {
	ServiceID string   `json:"service_id" validate:"required,uuid"`
	Address   *string  `json:"address,omitempty"`
	Comments  *string  `json:"comments,omitempty"`
	Addons    []string `json:"addons,omitempty"`
}

func partiesActor(r *http.Request) (parties.Actor, error) {
	userID, role, err := requestActor(r)
	if err != nil {
		return parties.Actor{}, err
	}
	return parties.Actor{UserID: userID, Role: role}, nil
}

// CreateParty opens a new draft party for the authenticated client.
func CreateParty(svc parties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := partiesActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createPartyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cityID, err := parseUUID(req.CityID, "city_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		party, err := svc.Create(r.Context(), actor, parties.CreateParams{
			CityID: cityID,
			Name:   req.Name,
			Date:   req.Date,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, party)
	}
}

// GetParty returns one party with its attached services.
func GetParty(svc parties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := partiesActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		partyID, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		party, err := svc.Get(r.Context(), actor, partyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, party)
	}
}

// ListMyParties returns the caller's parties newest-first.
func ListMyParties(svc parties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := partiesActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMine(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AttachPartyService links a visible catalog service to the party.
func AttachPartyService(svc parties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := partiesActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		partyID, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req attachServiceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		serviceID, err := parseUUID(req.ServiceID, "service_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		attached, err := svc.AttachService(r.Context(), actor, parties.AttachServiceParams{
			PartyID:   partyID,
			ServiceID: serviceID,
			Address:   req.Address,
			Comments:  req.Comments,
			Addons:    req.Addons,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, attached)
	}
}

// PublishParty moves a draft party into the marketplace.
func PublishParty(svc parties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := partiesActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		partyID, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		party, err := svc.Publish(r.Context(), actor, partyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, party)
	}
}

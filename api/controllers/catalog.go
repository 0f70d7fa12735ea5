package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dcastellanos/festivo-backend/api/responses"
	"github.com/dcastellanos/festivo-backend/api/validators"
	"github.com/dcastellanos/festivo-backend/internal/catalog"
	"github.com/dcastellanos/festivo-backend/internal/providers"
	"github.com/dcastellanos/festivo-backend/pkg/logger"
)

const maxPageSize = 100

type createServiceRequest struct {
	CategoryID  string  `json:"category_id" validate:"required,uuid"`
	CityID      string  `json:"city_id" validate:"required,uuid"`
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description,omitempty"`
	Price       string  `json:"price" validate:"required"`
}

type updateServiceRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *string `json:"price,omitempty"`
	CityID      *string `json:"city_id,omitempty"`
	CategoryID  *string `json:"category_id,omitempty"`
}

// ListServices is the public browse endpoint.
func ListServices(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := catalog.ListParams{Sort: strings.TrimSpace(r.URL.Query().Get("sort"))}

		var err error
		if params.Limit, err = validators.ParseQueryInt(r, "limit", 20, 1, maxPageSize); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.Offset, err = validators.ParseQueryInt(r, "offset", 0, 0, 1<<30); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.Filters.CityID, err = validators.ParseQueryUUID(r, "city_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.Filters.CategoryID, err = validators.ParseQueryUUID(r, "category_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.Filters.PriceMin, err = validators.ParseQueryDecimal(r, "price_min"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.Filters.PriceMax, err = validators.ParseQueryDecimal(r, "price_max"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
			params.Filters.Query = q
		}

		result, err := svc.ListServices(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetService returns one publicly visible listing.
func GetService(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		service, err := svc.GetService(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, service)
	}
}

// RecordServiceView bumps the popularity counter. Always 204, even if the
// write is dropped.
func RecordServiceView(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		svc.RecordView(r.Context(), id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListCities returns the city directory.
func ListCities(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cities, err := svc.ListCities(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cities)
	}
}

// ListCategories returns the category directory.
func ListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// CreateService adds a listing for the authenticated provider.
func CreateService(svc catalog.Service, providerSvc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createServiceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		provider, err := providerSvc.GetProfile(r.Context(), providers.Actor{UserID: userID, Role: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := catalog.CreateServiceParams{
			ProviderID:  provider.ID,
			Title:       req.Title,
			Description: req.Description,
		}
		if params.CategoryID, err = parseUUID(req.CategoryID, "category_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.CityID, err = parseUUID(req.CityID, "city_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.Price, err = parsePrice(req.Price); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		service, err := svc.CreateService(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, service)
	}
}

// UpdateService edits a listing owned by the authenticated provider.
func UpdateService(svc catalog.Service, providerSvc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		serviceID, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateServiceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		provider, err := providerSvc.GetProfile(r.Context(), providers.Actor{UserID: userID, Role: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := catalog.UpdateServiceParams{
			ServiceID:   serviceID,
			ProviderID:  provider.ID,
			Title:       req.Title,
			Description: req.Description,
		}
		if req.Price != nil {
			price, err := parsePrice(*req.Price)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			params.Price = &price
		}
		if req.CityID != nil {
			cityID, err := parseUUID(*req.CityID, "city_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			params.CityID = &cityID
		}
		if req.CategoryID != nil {
			categoryID, err := parseUUID(*req.CategoryID, "category_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			params.CategoryID = &categoryID
		}

		service, err := svc.UpdateService(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, service)
	}
}

// ListMyServices returns every listing of the authenticated provider,
// whatever its moderation state.
func ListMyServices(svc catalog.Service, providerSvc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		provider, err := providerSvc.GetProfile(r.Context(), providers.Actor{UserID: userID, Role: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		services, err := svc.ListProviderServices(r.Context(), provider.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, services)
	}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, validationError("price must be a decimal")
	}
	return price, nil
}

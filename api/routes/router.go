package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dcastellanos/festivo-backend/api/controllers"
	"github.com/dcastellanos/festivo-backend/api/middleware"
	"github.com/dcastellanos/festivo-backend/internal/admin"
	"github.com/dcastellanos/festivo-backend/internal/auth"
	"github.com/dcastellanos/festivo-backend/internal/catalog"
	"github.com/dcastellanos/festivo-backend/internal/notifications"
	"github.com/dcastellanos/festivo-backend/internal/offers"
	"github.com/dcastellanos/festivo-backend/internal/parties"
	"github.com/dcastellanos/festivo-backend/internal/providers"
	"github.com/dcastellanos/festivo-backend/internal/settings"
	"github.com/dcastellanos/festivo-backend/internal/transactions"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
	"github.com/dcastellanos/festivo-backend/pkg/config"
	"github.com/dcastellanos/festivo-backend/pkg/logger"
)

// NewRouter wires every HTTP endpoint. Public routes carry no auth;
// everything under /api requires a bearer token and, per group, a role.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness map[string]controllers.Pinger,
	authService auth.Service,
	registerService auth.RegisterService,
	catalogService catalog.Service,
	partiesService parties.Service,
	offersService offers.Service,
	transactionsService transactions.Service,
	notificationsService notifications.Service,
	providersService providers.Service,
	adminService admin.Service,
	settingsService settings.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	clientRole := string(enums.UserRoleClient)
	providerRole := string(enums.UserRoleProvider)
	adminRole := string(enums.UserRoleAdmin)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.Register(registerService, logg))
		r.Post("/login", controllers.Login(authService, logg))
	})

	// Public catalog browse plus the PayPal redirect and webhook, which
	// arrive without a bearer token.
	r.Route("/api/v1/public", func(r chi.Router) {
		r.Get("/services", controllers.ListServices(catalogService, logg))
		r.Get("/services/{id}", controllers.GetService(catalogService, logg))
		r.Post("/services/{id}/view", controllers.RecordServiceView(catalogService, logg))
		r.Get("/cities", controllers.ListCities(catalogService, logg))
		r.Get("/categories", controllers.ListCategories(catalogService, logg))
	})
	r.Get("/api/v1/paypal/callback", controllers.PayPalOnboardingCallback(providersService, logg))
	r.Post("/api/v1/webhooks/paypal", controllers.PayPalWebhook(providersService, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{id}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})

		r.Route("/v1/transactions", func(r chi.Router) {
			r.Get("/{id}", controllers.GetTransaction(transactionsService, logg))
			r.With(middleware.RequireRole(logg, clientRole)).Post("/{id}/pay", controllers.CreatePaymentOrder(transactionsService, logg))
			r.With(middleware.RequireRole(logg, clientRole)).Post("/capture", controllers.CaptureTransaction(transactionsService, logg))
			r.With(middleware.RequireRole(logg, clientRole)).Post("/{id}/terms-accepted", controllers.AcceptTransactionTerms(transactionsService, logg))
		})

		r.Route("/v1/parties", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, clientRole))
			r.Post("/", controllers.CreateParty(partiesService, logg))
			r.Get("/", controllers.ListMyParties(partiesService, logg))
			r.Get("/{id}", controllers.GetParty(partiesService, logg))
			r.Post("/{id}/services", controllers.AttachPartyService(partiesService, logg))
			r.Post("/{id}/publish", controllers.PublishParty(partiesService, logg))
		})

		r.Route("/v1/party-services/{id}/offers", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, providerRole)).Post("/", controllers.CreateOffer(offersService, logg))
			r.Get("/", controllers.ListPartyServiceOffers(offersService, logg))
		})
		r.Route("/v1/offers", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, clientRole, adminRole))
			r.Post("/{id}/approve", controllers.ApproveOffer(offersService, logg))
			r.Post("/{id}/reject", controllers.RejectOffer(offersService, logg))
		})

		r.Route("/v1/provider", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, providerRole))
			r.Get("/profile", controllers.GetProviderProfile(providersService, logg))
			r.Post("/paypal/onboarding-link", controllers.CreateOnboardingLink(providersService, logg))
			r.Get("/services", controllers.ListMyServices(catalogService, providersService, logg))
			r.Post("/services", controllers.CreateService(catalogService, providersService, logg))
			r.Patch("/services/{id}", controllers.UpdateService(catalogService, providersService, logg))
		})

		r.Route("/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, adminRole))
			r.Get("/services", controllers.AdminListServices(adminService, logg))
			r.Post("/services/{id}/approve", controllers.AdminApproveService(adminService, logg))
			r.Post("/services/{id}/reject", controllers.AdminRejectService(adminService, logg))
			r.Get("/users", controllers.AdminListUsers(adminService, logg))
			r.Post("/users/{id}/deactivate", controllers.AdminDeactivateUser(adminService, logg))
			r.Get("/settings/default-city", controllers.AdminGetDefaultCity(settingsService, logg))
			r.Put("/settings/default-city", controllers.AdminSetDefaultCity(settingsService, logg))
			r.Post("/transactions/process", controllers.AdminProcessPayouts(transactionsService, logg))
		})
	})

	return r
}

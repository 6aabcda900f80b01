package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"travelagency/internal/api"
	"travelagency/internal/auth"
	"travelagency/internal/booking"
	"travelagency/internal/catalog"
	"travelagency/internal/events"
	"travelagency/internal/job"
	"travelagency/internal/review"
	"travelagency/internal/settings"
	"travelagency/internal/user"
	"travelagency/internal/workflow"
	"travelagency/pkg/cache"
	"travelagency/pkg/config"
	"travelagency/pkg/logger"
	"travelagency/pkg/metrics"
)

type Dependencies struct {
	Cfg       config.Config
	DB        *pgxpool.Pool
	Log       logger.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Redis     *redis.Client
	Cache     cache.Records
	Publisher events.Publisher
	Rules     workflow.Rules
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Cache == nil {
		deps.Cache = cache.Nop{}
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if deps.Rules.Booking == nil {
		deps.Rules = workflow.DefaultRules()
	}

	r := chi.NewRouter()
	r.Use(api.RequestLogger(deps.Log, deps.Metrics))
	r.Use(api.CORSMiddleware(api.CORSOptions{
		AllowedOrigins: deps.Cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "Retry-After"},
		MaxAgeSeconds:  600,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	usersRepo := user.NewRepository(deps.DB)
	authHandlers := auth.Handlers{DB: deps.DB, Users: usersRepo, Cfg: deps.Cfg.Auth, Log: deps.Log}
	userHandlers := user.Handlers{
		DB:         deps.DB,
		Users:      usersRepo,
		BcryptCost: deps.Cfg.Auth.BcryptCost,
		Cache:      deps.Cache,
		Metrics:    deps.Metrics,
		Log:        deps.Log,
		Publisher:  deps.Publisher,
	}
	bookingHandlers := booking.Handlers{
		DB:        deps.DB,
		Bookings:  booking.NewRepository(deps.DB),
		Cache:     deps.Cache,
		Metrics:   deps.Metrics,
		Log:       deps.Log,
		Publisher: deps.Publisher,
		Rules:     deps.Rules,
	}
	reviewHandlers := review.Handlers{
		DB:        deps.DB,
		Reviews:   review.NewRepository(deps.DB),
		Cache:     deps.Cache,
		Metrics:   deps.Metrics,
		Log:       deps.Log,
		Publisher: deps.Publisher,
	}
	jobHandlers := job.Handlers{
		DB:        deps.DB,
		Jobs:      job.NewRepository(deps.DB),
		Cache:     deps.Cache,
		Metrics:   deps.Metrics,
		Log:       deps.Log,
		Publisher: deps.Publisher,
		Rules:     deps.Rules,
	}
	catalogHandlers := catalog.Handlers{DB: deps.DB, Catalog: catalog.NewRepository(deps.DB), Cache: deps.Cache, Metrics: deps.Metrics}
	settingsHandlers := settings.Handlers{DB: deps.DB, Settings: settings.NewRepository(deps.DB)}
	timeline := events.Handlers{DB: deps.DB}

	limited := api.RateLimit(deps.Cfg.RateLimit, deps.Redis, deps.Log)
	authenticated := api.Authenticate(deps.Cfg.Auth.JWTSecret)

	r.Route("/v1", func(r chi.Router) {
		// Public
		r.With(limited).Post("/auth/register", authHandlers.Register)
		r.With(limited).Post("/auth/login", authHandlers.Login)
		r.With(limited).Post("/auth/refresh", authHandlers.Refresh)
		r.Post("/auth/logout", authHandlers.Logout)

		r.Get("/tours", catalogHandlers.ListTours)
		r.Get("/tours/{id}", catalogHandlers.GetTour)
		r.Get("/tours/{id}/reviews", reviewHandlers.ListForTour)
		r.Get("/visas", catalogHandlers.ListVisas)
		r.Get("/visas/{id}", catalogHandlers.GetVisa)
		r.Get("/jobs", jobHandlers.ListActive)
		r.Get("/jobs/{id}", jobHandlers.GetActive)
		r.With(limited).Post("/jobs/{id}/applications", jobHandlers.Submit)
		r.Get("/settings", settingsHandlers.List)

		// Any signed-in account
		r.Group(func(r chi.Router) {
			r.Use(authenticated)

			r.Get("/me", authHandlers.Me)
			r.Get("/me/bookings", bookingHandlers.ListMine)
			r.Post("/bookings", bookingHandlers.Create)
			r.Post("/tours/{id}/reviews", reviewHandlers.Create)
		})

		// Staff. Every handler authorizes its own action against the role
		// stored now, so a CUSTOMER or a demoted token is rejected here too.
		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticated, api.RefreshRole(usersRepo, deps.Log))

			r.Get("/bookings", bookingHandlers.List)
			r.Get("/bookings/export", bookingHandlers.Export)
			r.Get("/bookings/anomalies", bookingHandlers.Anomalies)
			r.Get("/bookings/{id}", bookingHandlers.Get)
			r.Patch("/bookings/{id}/status", bookingHandlers.PatchStatus)
			r.Patch("/bookings/{id}/payment-status", bookingHandlers.PatchPaymentStatus)
			r.Get("/bookings/{id}/events", timeline.Timeline(events.KindBooking))

			r.Get("/reviews", reviewHandlers.List)
			r.Post("/reviews/{id}/approve", reviewHandlers.Approve)
			r.Post("/reviews/{id}/reject", reviewHandlers.Reject)
			r.Delete("/reviews/{id}", reviewHandlers.Delete)
			r.Get("/reviews/{id}/events", timeline.Timeline(events.KindReview))

			r.Get("/jobs", jobHandlers.ListPostings)
			r.Post("/jobs", jobHandlers.CreatePosting)
			r.Put("/jobs/{id}", jobHandlers.UpdatePosting)
			r.Patch("/jobs/{id}/active", jobHandlers.PatchActive)
			r.Get("/jobs/{id}/events", timeline.Timeline(events.KindJobPosting))

			r.Get("/applications", jobHandlers.ListApplications)
			r.Get("/applications/{id}", jobHandlers.GetApplication)
			r.Patch("/applications/{id}", jobHandlers.PatchApplication)
			r.Get("/applications/{id}/events", timeline.Timeline(events.KindApplication))

			r.Get("/tours", catalogHandlers.AdminListTours)
			r.Post("/tours", catalogHandlers.CreateTour)
			r.Put("/tours/{id}", catalogHandlers.UpdateTour)
			r.Get("/visas", catalogHandlers.AdminListVisas)
			r.Post("/visas", catalogHandlers.CreateVisa)
			r.Put("/visas/{id}", catalogHandlers.UpdateVisa)

			r.Get("/customers", userHandlers.ListCustomers)
			r.Get("/employees", userHandlers.ListEmployees)
			r.Post("/employees", userHandlers.CreateEmployee)
			r.Patch("/users/{id}/role", userHandlers.ChangeRole)
			r.Get("/users/{id}/events", timeline.Timeline(events.KindUser))

			r.Put("/settings/{key}", settingsHandlers.Put)
		})
	})

	return r
}

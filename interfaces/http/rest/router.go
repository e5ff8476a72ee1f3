// Package rest wires the chi router: global middleware, the authenticated
// /api/v1 surface and the anonymous share endpoint.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/application/services"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/config"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence"
	"github.com/0xtuytuy/bubblybatch-backend/interfaces/http/rest/handlers"
	"github.com/0xtuytuy/bubblybatch-backend/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router.
type Router struct {
	cfg       *config.Config
	repo      *persistence.Repository
	batches   *services.BatchService
	reminders *services.ReminderService
	devices   *services.DeviceService
	exports   *services.ExportService
	shares    *services.ShareService
	logger    *zap.Logger
}

// NewRouter creates a new router instance.
func NewRouter(
	cfg *config.Config,
	repo *persistence.Repository,
	batches *services.BatchService,
	reminders *services.ReminderService,
	devices *services.DeviceService,
	exports *services.ExportService,
	shares *services.ShareService,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:       cfg,
		repo:      repo,
		batches:   batches,
		reminders: reminders,
		devices:   devices,
		exports:   exports,
		shares:    shares,
		logger:    logger,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.bubblybatch.com"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)

	// Anonymous public view
	shareHandler := handlers.NewShareHandler(rt.shares, rt.logger)
	router.Get("/share/{batchID}", shareHandler.GetSharedBatch)

	// Authenticated API
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.cfg, rt.logger))

		userHandler := handlers.NewUserHandler(rt.repo, rt.logger)
		r.Get("/me", userHandler.Me)

		r.Route("/batches", func(r chi.Router) {
			batchHandler := handlers.NewBatchHandler(rt.batches, rt.logger)
			reminderHandler := handlers.NewReminderHandler(rt.reminders, rt.logger)

			r.Post("/", batchHandler.CreateBatch)
			r.Get("/", batchHandler.ListBatches)
			r.Get("/{batchID}", batchHandler.GetBatch)
			r.Patch("/{batchID}", batchHandler.UpdateBatch)
			r.Delete("/{batchID}", batchHandler.ArchiveBatch)

			r.Post("/{batchID}/events", batchHandler.LogEvent)
			r.Get("/{batchID}/events", batchHandler.ListEvents)

			r.Post("/{batchID}/photos", batchHandler.PresignPhotoUpload)
			r.Get("/{batchID}/photos", batchHandler.PresignPhotoDownload)

			r.Get("/{batchID}/reminders/suggest", reminderHandler.Suggest)
		})

		r.Route("/reminders", func(r chi.Router) {
			reminderHandler := handlers.NewReminderHandler(rt.reminders, rt.logger)
			r.Post("/", reminderHandler.Confirm)
			r.Get("/", reminderHandler.List)
			r.Delete("/{reminderID}", reminderHandler.Cancel)
			r.Post("/{reminderID}/sent", reminderHandler.MarkSent)
		})

		r.Route("/devices", func(r chi.Router) {
			deviceHandler := handlers.NewDeviceHandler(rt.devices, rt.logger)
			r.Put("/", deviceHandler.Register)
			r.Get("/", deviceHandler.List)
			r.Delete("/{deviceID}", deviceHandler.Unregister)
		})

		exportHandler := handlers.NewExportHandler(rt.exports, rt.logger)
		r.Get("/export/batches.csv", exportHandler.ExportBatches)
	})

	return router
}

// healthCheck handles health check requests.
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/postalcodeworx/backend/internal/config"
	listingssvc "github.com/postalcodeworx/backend/internal/services/listings"
	"github.com/postalcodeworx/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	ListingService *listingssvc.Service

	// UploadsDir serves stored photos when the local storage backend
	// is active. Empty disables the static route.
	UploadsDir string

	Logger *zap.Logger
	Config config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	rootHandler := handlers.NewRootHandler("1.0.0")
	glovesHandler := handlers.NewGlovesHandler(deps.ListingService, deps.Config.Uploads.MaxUploadSize)

	r.Get("/", rootHandler.Get)
	r.Get("/healthz", healthHandler.Get)
	r.Get("/health", healthHandler.Get)

	r.Route("/api/gloves", func(r chi.Router) {
		r.Post("/analyze", glovesHandler.Analyze)
		r.Post("/upload", glovesHandler.Upload)
		r.Get("/search", glovesHandler.Search)
		r.Get("/stats/postal-codes", glovesHandler.Stats)
		r.Get("/{id}", glovesHandler.Get)
		r.Get("/{id}/payment-info", glovesHandler.PaymentInfo)
		r.Post("/{id}/contact", glovesHandler.Contact)
		r.Post("/{id}/report", glovesHandler.Report)
	})

	if deps.UploadsDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadsDir)))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}
}

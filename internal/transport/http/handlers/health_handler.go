package handlers

import (
	"net/http"

	httperrors "github.com/postalcodeworx/backend/internal/transport/http/errors"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Get(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// RootHandler serves the API banner at /.
type RootHandler struct {
	version string
}

func NewRootHandler(version string) *RootHandler {
	if version == "" {
		version = "1.0.0"
	}
	return &RootHandler{version: version}
}

func (h *RootHandler) Get(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, map[string]string{
		"name":    "PostalCodeWorx - Glove Finder API",
		"version": h.version,
		"status":  "running",
	})
}

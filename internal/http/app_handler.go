package http

import (
	"net/http"

	"github.com/digitaldudes/ottcart/internal/appversion"
)

type AppHandler struct {
	latest string
}

func NewAppHandler(latestVersion string) *AppHandler {
	return &AppHandler{latest: latestVersion}
}

type VersionResponse struct {
	Current     string `json:"current"`
	Latest      string `json:"latest"`
	NeedsUpdate bool   `json:"needsUpdate"`
}

// GET /api/v1/app/version?current=1.2.0
func (h *AppHandler) Version(w http.ResponseWriter, r *http.Request) {
	current := r.URL.Query().Get("current")
	respondJSON(w, http.StatusOK, VersionResponse{
		Current:     current,
		Latest:      h.latest,
		NeedsUpdate: appversion.NeedsUpdate(current, h.latest),
	})
}

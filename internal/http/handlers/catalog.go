package handlers

import (
	"net/http"
	"strings"

	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
)

// CatalogHandler serves the read-only service menu and team.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

type servicesResponse struct {
	Salon      catalog.Salon     `json:"salon"`
	Categories []string          `json:"categories"`
	Services   []catalog.Service `json:"services"`
	Selected   *catalog.Service  `json:"selected,omitempty"`
}

// ListServices returns the menu.
// GET /api/v1/services?service=<id>
// A known service id is echoed back as the pre-selected service.
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	resp := servicesResponse{
		Salon:      h.catalog.Salon(),
		Categories: h.catalog.Categories(),
		Services:   h.catalog.Services(),
	}
	if id := strings.TrimSpace(r.URL.Query().Get("service")); id != "" {
		svc, err := h.catalog.Service(id)
		if err != nil {
			jsonError(w, "unknown service: "+id, http.StatusNotFound)
			return
		}
		resp.Selected = &svc
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListTeam returns the professionals.
// GET /api/v1/team
func (h *CatalogHandler) ListTeam(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"team": h.catalog.Team()})
}

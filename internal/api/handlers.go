package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ihcair/fleetdash/internal/fleet"
	"github.com/ihcair/fleetdash/pkg/logger"
)

// Handler serves the API endpoints. Dashboard and position documents are
// built offline and read from the dist root; the handler never rebuilds.
type Handler struct {
	fleets   *fleet.Config
	distRoot string
	logger   *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(fleets *fleet.Config, distRoot string, log *logger.Logger) *Handler {
	return &Handler{
		fleets:   fleets,
		distRoot: distRoot,
		logger:   log.Named("api-handler"),
	}
}

// FleetSummary is one fleet in the fleet listing
type FleetSummary struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     fleet.Type `json:"type"`
	Aircraft int        `json:"aircraft"`
}

// GetHealth returns the health check response
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetFleets lists the configured fleets
func (h *Handler) GetFleets(w http.ResponseWriter, r *http.Request) {
	out := make([]FleetSummary, 0, len(h.fleets.Fleets))
	for i := range h.fleets.Fleets {
		fl := &h.fleets.Fleets[i]
		out = append(out, FleetSummary{
			ID:       fl.ID,
			Name:     fl.DisplayName(),
			Type:     fl.Type,
			Aircraft: len(fl.Aircraft),
		})
	}
	h.respondJSON(w, http.StatusOK, out)
}

// GetFleetDashboard serves a fleet's built dashboard document
func (h *Handler) GetFleetDashboard(w http.ResponseWriter, r *http.Request) {
	h.serveDocument(w, r, "dashboard.json")
}

// GetFleetPositions serves a fleet's latest positions document
func (h *Handler) GetFleetPositions(w http.ResponseWriter, r *http.Request) {
	h.serveDocument(w, r, "positions.json")
}

// serveDocument streams a built JSON document for the fleet in the URL
func (h *Handler) serveDocument(w http.ResponseWriter, r *http.Request, name string) {
	fleetID := chi.URLParam(r, "id")
	if h.fleets.Find(fleetID) == nil {
		h.respondError(w, http.StatusNotFound, "unknown fleet")
		return
	}

	path := filepath.Join(h.distRoot, fleetID, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			h.respondError(w, http.StatusNotFound, "document not built yet")
			return
		}
		h.logger.Error("Failed to read document",
			logger.String("path", path),
			logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to read document")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", logger.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

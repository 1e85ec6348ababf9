package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/abdullah0300/fleet-management-sub001/internal/fanout"
	"github.com/abdullah0300/fleet-management-sub001/internal/service"
	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
	"github.com/abdullah0300/fleet-management-sub001/pkg/repository"
	"github.com/gorilla/mux"
)

type LocationsHandler struct {
	locations   *service.LocationService
	historyRepo repository.LocationHistoryRepo
	hub         *fanout.Hub // nil disables the live endpoint
}

func NewLocationsHandler(ls *service.LocationService, hr repository.LocationHistoryRepo, hub *fanout.Hub) *LocationsHandler {
	return &LocationsHandler{locations: ls, historyRepo: hr, hub: hub}
}

type ingestResponse struct {
	Success   bool   `json:"success"`
	VehicleID string `json:"vehicle_id"`
}

// Ingest accepts one location sample from the authenticated driver's device.
func (h *LocationsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	driverID := driverIDFromContext(r.Context())

	var req service.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	vehicleID, err := h.locations.Ingest(r.Context(), driverID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, ingestResponse{Success: true, VehicleID: vehicleID}, http.StatusOK)
}

// Live serves the whole-fleet snapshot maintained by the hub, the payload
// map dashboards poll. Stale flags that the feed has been quiet for longer
// than the configured threshold.
func (h *LocationsHandler) Live(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeError(w, "live view unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, map[string]any{
		"vehicles": h.hub.Snapshots(),
		"stale":    h.hub.Stale(),
	}, http.StatusOK)
}

// GetVehicleLocation serves the vehicle's current snapshot.
func (h *LocationsHandler) GetVehicleLocation(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["id"]

	loc, err := h.locations.GetVehicleLocation(r.Context(), vehicleID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, loc, http.StatusOK)
}

// ListHistory serves the vehicle's breadcrumb trail. The since parameter is
// unix milliseconds; zero means everything.
func (h *LocationsHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["id"]

	var since int64
	if s := r.URL.Query().Get("since"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v < 0 {
			writeError(w, "invalid since", http.StatusBadRequest)
			return
		}
		since = v
	}

	entries, err := h.historyRepo.ListHistory(r.Context(), vehicleID, since)
	if err != nil {
		writeError(w, "failed to list history", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.LocationHistoryEntry{}
	}

	writeJSON(w, map[string]any{"vehicle_id": vehicleID, "items": entries}, http.StatusOK)
}

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/abdullah0300/fleet-management-sub001/internal/service"
	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
	"github.com/abdullah0300/fleet-management-sub001/pkg/repository"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type VehiclesHandler struct {
	vehicleRepo  repository.VehicleRepo
	documentRepo repository.DocumentRepo
	documents    *service.DocumentService
}

func NewVehiclesHandler(vr repository.VehicleRepo, dr repository.DocumentRepo, ds *service.DocumentService) *VehiclesHandler {
	return &VehiclesHandler{vehicleRepo: vr, documentRepo: dr, documents: ds}
}

type createVehicleRequest struct {
	Registration    string  `json:"registration"`
	CurrentDriverID *string `json:"current_driver_id,omitempty"`
}

func (h *VehiclesHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req createVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	req.Registration = strings.TrimSpace(req.Registration)
	if req.Registration == "" {
		writeError(w, "registration is required", http.StatusBadRequest)
		return
	}

	vehicle := models.Vehicle{
		ID:              uuid.NewString(),
		Registration:    req.Registration,
		CurrentDriverID: req.CurrentDriverID,
	}
	if err := h.vehicleRepo.CreateVehicle(r.Context(), &vehicle); err != nil {
		writeError(w, "failed to create vehicle", http.StatusInternalServerError)
		return
	}

	writeJSON(w, vehicle, http.StatusCreated)
}

func (h *VehiclesHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.vehicleRepo.GetVehicleByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "failed to load vehicle", http.StatusInternalServerError)
		return
	}
	if vehicle == nil {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}

	writeJSON(w, vehicle, http.StatusOK)
}

func (h *VehiclesHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicleRepo.ListVehicles(r.Context())
	if err != nil {
		writeError(w, "failed to list vehicles", http.StatusInternalServerError)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}

	writeJSON(w, map[string]any{"items": vehicles}, http.StatusOK)
}

type createDocumentRequest struct {
	DocType   string `json:"doc_type"`
	Reference string `json:"reference"`
	ExpiresAt int64  `json:"expires_at"`
}

// CreateDocument registers a compliance document against the vehicle.
func (h *VehiclesHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["id"]

	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.DocType) == "" || req.ExpiresAt <= 0 {
		writeError(w, "doc_type and expires_at are required", http.StatusBadRequest)
		return
	}

	vehicle, err := h.vehicleRepo.GetVehicleByID(r.Context(), vehicleID)
	if err != nil {
		writeError(w, "failed to load vehicle", http.StatusInternalServerError)
		return
	}
	if vehicle == nil {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}

	doc := models.VehicleDocument{
		ID:        uuid.NewString(),
		VehicleID: vehicleID,
		DocType:   req.DocType,
		Reference: req.Reference,
		ExpiresAt: req.ExpiresAt,
	}
	if err := h.documentRepo.CreateDocument(r.Context(), &doc); err != nil {
		writeError(w, "failed to create document", http.StatusInternalServerError)
		return
	}

	writeJSON(w, doc, http.StatusCreated)
}

// ListExpiringDocuments reports documents expiring within the requested
// number of days (default 30).
func (h *VehiclesHandler) ListExpiringDocuments(w http.ResponseWriter, r *http.Request) {
	within := 30 * 24 * time.Hour
	if d := r.URL.Query().Get("within_days"); d != "" {
		v, err := strconv.Atoi(d)
		if err != nil || v <= 0 {
			writeError(w, "invalid within_days", http.StatusBadRequest)
			return
		}
		within = time.Duration(v) * 24 * time.Hour
	}

	docs, err := h.documents.ListExpiring(r.Context(), within)
	if err != nil {
		writeError(w, "failed to list documents", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []models.VehicleDocument{}
	}

	writeJSON(w, map[string]any{"items": docs}, http.StatusOK)
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/abdullah0300/fleet-management-sub001/internal/service"
	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
	"github.com/gorilla/mux"
)

type ManifestsHandler struct {
	manifests *service.ManifestService
}

func NewManifestsHandler(ms *service.ManifestService) *ManifestsHandler {
	return &ManifestsHandler{manifests: ms}
}

type createManifestRequest struct {
	DriverID      *string `json:"driver_id,omitempty"`
	VehicleID     *string `json:"vehicle_id,omitempty"`
	ScheduledDate string  `json:"scheduled_date"`
}

func (h *ManifestsHandler) CreateManifest(w http.ResponseWriter, r *http.Request) {
	var req createManifestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	m, err := h.manifests.CreateManifest(r.Context(), req.DriverID, req.VehicleID, req.ScheduledDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, m, http.StatusCreated)
}

func (h *ManifestsHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	m, jobs, err := h.manifests.GetManifest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	writeJSON(w, map[string]any{"manifest": m, "jobs": jobs}, http.StatusOK)
}

type attachJobRequest struct {
	JobID         string `json:"job_id"`
	SequenceOrder *int64 `json:"sequence_order,omitempty"`
}

// AttachJob adds a job to the manifest, appending when no sequence is given.
func (h *ManifestsHandler) AttachJob(w http.ResponseWriter, r *http.Request) {
	manifestID := mux.Vars(r)["id"]

	var req attachJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.JobID == "" {
		writeError(w, "job_id is required", http.StatusBadRequest)
		return
	}

	job, err := h.manifests.AddJob(r.Context(), manifestID, req.JobID, req.SequenceOrder)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, job, http.StatusOK)
}

func (h *ManifestsHandler) DetachJob(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.manifests.RemoveJob(r.Context(), vars["jobID"], vars["id"]); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

type updateAssignmentRequest struct {
	DriverID  *string `json:"driver_id,omitempty"`
	VehicleID *string `json:"vehicle_id,omitempty"`
}

// UpdateAssignment swaps the manifest's driver and/or vehicle; the change
// cascades to every attached job.
func (h *ManifestsHandler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	manifestID := mux.Vars(r)["id"]

	var req updateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.DriverID == nil && req.VehicleID == nil {
		writeError(w, "nothing to update", http.StatusBadRequest)
		return
	}

	m, err := h.manifests.UpdateAssignment(r.Context(), manifestID, req.DriverID, req.VehicleID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, m, http.StatusOK)
}

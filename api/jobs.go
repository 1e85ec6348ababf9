package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
	"github.com/abdullah0300/fleet-management-sub001/pkg/repository"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type JobsHandler struct {
	jobRepo repository.JobRepo
}

func NewJobsHandler(jr repository.JobRepo) *JobsHandler {
	return &JobsHandler{jobRepo: jr}
}

type createJobRequest struct {
	CustomerName string `json:"customer_name"`
}

func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" {
		writeError(w, "customer_name is required", http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	job := models.Job{
		ID:           id,
		JobNumber:    "JOB-" + strings.ToUpper(id[:8]),
		Status:       models.JobStatusPending,
		CustomerName: req.CustomerName,
	}
	if err := h.jobRepo.CreateJob(r.Context(), &job); err != nil {
		writeError(w, "failed to create job", http.StatusInternalServerError)
		return
	}

	writeJSON(w, job, http.StatusCreated)
}

func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobRepo.GetJobByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "failed to load job", http.StatusInternalServerError)
		return
	}
	if job == nil {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}

	writeJSON(w, job, http.StatusOK)
}

func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.JobFilter{
		Status:     q.Get("status"),
		Unassigned: q.Get("unassigned") == "true",
		Limit:      50,
	}
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			filter.Limit = v
		}
	}
	if o := q.Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			filter.Offset = v
		}
	}

	jobs, err := h.jobRepo.ListJobs(r.Context(), filter)
	if err != nil {
		writeError(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	resp := map[string]any{
		"limit":  filter.Limit,
		"offset": filter.Offset,
		"items":  jobs,
	}
	writeJSON(w, resp, http.StatusOK)
}

type podRequest struct {
	RecipientName string `json:"recipient_name"`
	Note          string `json:"note,omitempty"`
	PhotoRef      string `json:"photo_ref,omitempty"`
	CapturedAt    *int64 `json:"captured_at,omitempty"`
}

// RecordPOD captures proof of delivery and completes the job.
func (h *JobsHandler) RecordPOD(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	var req podRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req.RecipientName = strings.TrimSpace(req.RecipientName)
	if req.RecipientName == "" {
		writeError(w, "recipient_name is required", http.StatusBadRequest)
		return
	}

	capturedAt := time.Now().UTC().UnixMilli()
	if req.CapturedAt != nil && *req.CapturedAt > 0 {
		capturedAt = *req.CapturedAt
	}

	pod := models.ProofOfDelivery{
		JobID:         jobID,
		RecipientName: req.RecipientName,
		Note:          req.Note,
		PhotoRef:      req.PhotoRef,
		CapturedAt:    capturedAt,
	}
	if err := h.jobRepo.RecordProofOfDelivery(r.Context(), &pod); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, "Not found", http.StatusNotFound)
			return
		}
		writeError(w, "failed to record proof of delivery", http.StatusInternalServerError)
		return
	}

	writeJSON(w, pod, http.StatusCreated)
}

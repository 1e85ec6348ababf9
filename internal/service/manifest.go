package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
	"github.com/abdullah0300/fleet-management-sub001/pkg/repository"
)

const scheduledDateLayout = "2006-01-02"

// ManifestService is the commit pipeline: it durably materializes a manifest
// plus its ordered job list and keeps driver/vehicle assignment consistent
// across jobs and the driver record.
type ManifestService struct {
	manifests repository.ManifestRepo
	logger    *slog.Logger
}

func NewManifestService(mr repository.ManifestRepo, logger *slog.Logger) *ManifestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ManifestService{manifests: mr, logger: logger}
}

// CreateManifest creates an empty manifest. With both a driver and a vehicle
// chosen it starts out scheduled, otherwise draft.
func (s *ManifestService) CreateManifest(ctx context.Context, driverID, vehicleID *string, scheduledDate string) (*models.Manifest, error) {
	if err := validateRef("driver_id", driverID); err != nil {
		return nil, err
	}
	if err := validateRef("vehicle_id", vehicleID); err != nil {
		return nil, err
	}
	if scheduledDate == "" {
		return nil, invalidf("scheduled_date", "is required")
	}
	if _, err := time.Parse(scheduledDateLayout, scheduledDate); err != nil {
		return nil, invalidf("scheduled_date", "must be YYYY-MM-DD")
	}

	status := models.ManifestStatusDraft
	if driverID != nil && vehicleID != nil {
		status = models.ManifestStatusScheduled
	}

	id := uuid.NewString()
	m := &models.Manifest{
		ID:             id,
		ManifestNumber: manifestNumber(id),
		Status:         status,
		DriverID:       driverID,
		VehicleID:      vehicleID,
		ScheduledDate:  scheduledDate,
	}
	if err := s.manifests.CreateManifest(ctx, m); err != nil {
		return nil, fmt.Errorf("create manifest: %w", err)
	}
	return m, nil
}

// GetManifest returns the manifest and its jobs in delivery order.
func (s *ManifestService) GetManifest(ctx context.Context, id string) (*models.Manifest, []models.Job, error) {
	m, err := s.manifests.GetManifestByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, ErrNotFound
	}
	jobs, err := s.manifests.ListManifestJobs(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return m, jobs, nil
}

// AddJob attaches a job at the given sequence, appending when seq is nil.
// On return the job carries the manifest's driver/vehicle (or nil when the
// manifest has none yet) and is visible in listings ordered by sequence.
func (s *ManifestService) AddJob(ctx context.Context, manifestID, jobID string, seq *int64) (*models.Job, error) {
	if seq != nil && *seq <= 0 {
		return nil, invalidf("sequence", "must be positive")
	}
	j, err := s.manifests.AttachJob(ctx, manifestID, jobID, seq)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return j, err
}

// RemoveJob detaches a job; it reverts to pending with no manifest, driver,
// vehicle or sequence, eligible for the pool and for other manifests again.
func (s *ManifestService) RemoveJob(ctx context.Context, jobID, manifestID string) error {
	err := s.manifests.DetachJob(ctx, jobID, manifestID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// UpdateAssignment reassigns driver and/or vehicle. The change cascades to
// every attached job, and an assigned driver goes on_trip holding the
// manifest's vehicle. The whole update is transactional and safe to retry.
func (s *ManifestService) UpdateAssignment(ctx context.Context, manifestID string, driverID, vehicleID *string) (*models.Manifest, error) {
	if err := validateRef("driver_id", driverID); err != nil {
		return nil, err
	}
	if err := validateRef("vehicle_id", vehicleID); err != nil {
		return nil, err
	}

	m, err := s.manifests.UpdateAssignment(ctx, manifestID, driverID, vehicleID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return m, err
}

func validateRef(field string, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := uuid.Parse(*id); err != nil {
		return invalidf(field, "must be a UUID")
	}
	return nil
}

func manifestNumber(id string) string {
	return "MAN-" + strings.ToUpper(id[:8])
}

package repository

import (
	"context"
	"errors"

	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

// ErrNotFound is returned by write operations whose target row does not
// exist. Read operations return (nil, nil) instead.
var ErrNotFound = errors.New("not found")

type DriverRepo interface {
	CreateDriver(ctx context.Context, d *models.Driver) error
	GetDriverByID(ctx context.Context, id string) (*models.Driver, error)
	GetDriverByEmail(ctx context.Context, email string) (*models.Driver, error)
	ListDrivers(ctx context.Context) ([]models.Driver, error)
}

type VehicleRepo interface {
	CreateVehicle(ctx context.Context, v *models.Vehicle) error
	GetVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	GetVehicleByDriver(ctx context.Context, driverID string) (*models.Vehicle, error)
	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
	UpdateVehicleLocation(ctx context.Context, vehicleID string, loc *models.LocationSnapshot) error
}

type JobRepo interface {
	CreateJob(ctx context.Context, j *models.Job) error
	GetJobByID(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]models.Job, error)
	RecordProofOfDelivery(ctx context.Context, pod *models.ProofOfDelivery) error
}

// JobFilter narrows ListJobs. Zero value lists everything.
type JobFilter struct {
	Status     string
	Unassigned bool // only jobs with no manifest
	Limit      int
	Offset     int
}

type ManifestRepo interface {
	CreateManifest(ctx context.Context, m *models.Manifest) error
	GetManifestByID(ctx context.Context, id string) (*models.Manifest, error)
	// ListManifestJobs returns the manifest's jobs ordered by sequence_order
	// ascending.
	ListManifestJobs(ctx context.Context, manifestID string) ([]models.Job, error)
	// AttachJob places a job at the given sequence, or appends when seq is
	// nil. The job inherits the manifest's driver/vehicle. Runs in a single
	// transaction.
	AttachJob(ctx context.Context, manifestID, jobID string, seq *int64) (*models.Job, error)
	// DetachJob clears the job's manifest, sequence, driver and vehicle and
	// resets its status to pending.
	DetachJob(ctx context.Context, jobID, manifestID string) error
	// UpdateAssignment changes the manifest's driver and/or vehicle and
	// cascades the change to every attached job and to the driver record, all
	// in one transaction.
	UpdateAssignment(ctx context.Context, manifestID string, driverID, vehicleID *string) (*models.Manifest, error)
}

type LocationHistoryRepo interface {
	// AppendHistory is idempotent per (vehicle, timestamp); replaying the
	// same sample is a no-op.
	AppendHistory(ctx context.Context, e *models.LocationHistoryEntry) error
	ListHistory(ctx context.Context, vehicleID string, since int64) ([]models.LocationHistoryEntry, error)
}

type DocumentRepo interface {
	CreateDocument(ctx context.Context, d *models.VehicleDocument) error
	ListExpiringDocuments(ctx context.Context, before int64) ([]models.VehicleDocument, error)
}

package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
	"github.com/abdullah0300/fleet-management-sub001/pkg/repository"
)

// In-memory repositories for handler and service tests.
type Mocks struct {
	Drivers   *DriverRepo
	Vehicles  *VehicleRepo
	Jobs      *JobRepo
	Manifests *ManifestRepo
	History   *HistoryRepo
	Documents *DocumentRepo
}

func NewMocks() *Mocks {
	jobs := &JobRepo{}
	return &Mocks{
		Drivers:   &DriverRepo{},
		Vehicles:  &VehicleRepo{},
		Jobs:      jobs,
		Manifests: &ManifestRepo{Jobs: jobs},
		History:   &HistoryRepo{},
		Documents: &DocumentRepo{},
	}
}

type DriverRepo struct {
	mu        sync.Mutex
	Stored    []models.Driver
	CreateErr error
}

func (m *DriverRepo) CreateDriver(ctx context.Context, d *models.Driver) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stored = append(m.Stored, *d)
	return nil
}

func (m *DriverRepo) GetDriverByID(ctx context.Context, id string) (*models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			d := m.Stored[i]
			return &d, nil
		}
	}
	return nil, nil
}

func (m *DriverRepo) GetDriverByEmail(ctx context.Context, email string) (*models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Stored {
		if m.Stored[i].Email == email {
			d := m.Stored[i]
			return &d, nil
		}
	}
	return nil, nil
}

func (m *DriverRepo) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Driver, len(m.Stored))
	copy(out, m.Stored)
	return out, nil
}

type VehicleRepo struct {
	mu        sync.Mutex
	Stored    []models.Vehicle
	UpdateErr error
	GetErr    error
}

func (m *VehicleRepo) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stored = append(m.Stored, *v)
	return nil
}

func (m *VehicleRepo) GetVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			v := m.Stored[i]
			return &v, nil
		}
	}
	return nil, nil
}

func (m *VehicleRepo) GetVehicleByDriver(ctx context.Context, driverID string) (*models.Vehicle, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Stored {
		if m.Stored[i].CurrentDriverID != nil && *m.Stored[i].CurrentDriverID == driverID {
			v := m.Stored[i]
			return &v, nil
		}
	}
	return nil, nil
}

func (m *VehicleRepo) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Vehicle, len(m.Stored))
	copy(out, m.Stored)
	return out, nil
}

func (m *VehicleRepo) UpdateVehicleLocation(ctx context.Context, vehicleID string, loc *models.LocationSnapshot) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Stored {
		if m.Stored[i].ID == vehicleID {
			snap := *loc
			m.Stored[i].Location = &snap
			return nil
		}
	}
	return repository.ErrNotFound
}

type JobRepo struct {
	mu        sync.Mutex
	Stored    []models.Job
	PODs      []models.ProofOfDelivery
	CreateErr error
}

func (m *JobRepo) CreateJob(ctx context.Context, j *models.Job) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stored = append(m.Stored, *j)
	return nil
}

func (m *JobRepo) GetJobByID(ctx context.Context, id string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			j := m.Stored[i]
			return &j, nil
		}
	}
	return nil, nil
}

func (m *JobRepo) ListJobs(ctx context.Context, filter repository.JobFilter) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Job
	for _, j := range m.Stored {
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		if filter.Unassigned && j.ManifestID != nil {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (m *JobRepo) RecordProofOfDelivery(ctx context.Context, pod *models.ProofOfDelivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Stored {
		if m.Stored[i].ID == pod.JobID {
			m.Stored[i].Status = models.JobStatusCompleted
			m.PODs = append(m.PODs, *pod)
			return nil
		}
	}
	return repository.ErrNotFound
}

type ManifestRepo struct {
	mu        sync.Mutex
	Stored    []models.Manifest
	Jobs      *JobRepo
	AttachErr error
	UpdateErr error
}

func (m *ManifestRepo) CreateManifest(ctx context.Context, mf *models.Manifest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stored = append(m.Stored, *mf)
	return nil
}

func (m *ManifestRepo) GetManifestByID(ctx context.Context, id string) (*models.Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			mf := m.Stored[i]
			return &mf, nil
		}
	}
	return nil, nil
}

func (m *ManifestRepo) ListManifestJobs(ctx context.Context, manifestID string) ([]models.Job, error) {
	jobs, err := m.Jobs.ListJobs(ctx, repository.JobFilter{})
	if err != nil {
		return nil, err
	}
	var out []models.Job
	for _, j := range jobs {
		if j.ManifestID != nil && *j.ManifestID == manifestID {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool {
		return *out[i].SequenceOrder < *out[k].SequenceOrder
	})
	return out, nil
}

func (m *ManifestRepo) AttachJob(ctx context.Context, manifestID, jobID string, seq *int64) (*models.Job, error) {
	if m.AttachErr != nil {
		return nil, m.AttachErr
	}
	mf, err := m.GetManifestByID(ctx, manifestID)
	if err != nil || mf == nil {
		return nil, repository.ErrNotFound
	}

	next := int64(1)
	if seq == nil {
		existing, _ := m.ListManifestJobs(ctx, manifestID)
		for _, j := range existing {
			if *j.SequenceOrder >= next {
				next = *j.SequenceOrder + 1
			}
		}
	} else {
		next = *seq
	}

	m.Jobs.mu.Lock()
	defer m.Jobs.mu.Unlock()
	for i := range m.Jobs.Stored {
		if m.Jobs.Stored[i].ID == jobID {
			m.Jobs.Stored[i].ManifestID = &manifestID
			m.Jobs.Stored[i].SequenceOrder = &next
			m.Jobs.Stored[i].DriverID = mf.DriverID
			m.Jobs.Stored[i].VehicleID = mf.VehicleID
			m.Jobs.Stored[i].Status = models.JobStatusAssigned
			j := m.Jobs.Stored[i]
			return &j, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *ManifestRepo) DetachJob(ctx context.Context, jobID, manifestID string) error {
	m.Jobs.mu.Lock()
	defer m.Jobs.mu.Unlock()
	for i := range m.Jobs.Stored {
		j := &m.Jobs.Stored[i]
		if j.ID == jobID && j.ManifestID != nil && *j.ManifestID == manifestID {
			j.ManifestID = nil
			j.SequenceOrder = nil
			j.DriverID = nil
			j.VehicleID = nil
			j.Status = models.JobStatusPending
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *ManifestRepo) UpdateAssignment(ctx context.Context, manifestID string, driverID, vehicleID *string) (*models.Manifest, error) {
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Stored {
		if m.Stored[i].ID != manifestID {
			continue
		}
		mf := &m.Stored[i]
		if driverID != nil {
			mf.DriverID = driverID
		}
		if vehicleID != nil {
			mf.VehicleID = vehicleID
		}
		if mf.Status == models.ManifestStatusDraft && mf.DriverID != nil && mf.VehicleID != nil {
			mf.Status = models.ManifestStatusScheduled
		}

		m.Jobs.mu.Lock()
		for k := range m.Jobs.Stored {
			j := &m.Jobs.Stored[k]
			if j.ManifestID != nil && *j.ManifestID == manifestID {
				j.DriverID = mf.DriverID
				j.VehicleID = mf.VehicleID
			}
		}
		m.Jobs.mu.Unlock()

		out := *mf
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

type HistoryRepo struct {
	mu        sync.Mutex
	Stored    []models.LocationHistoryEntry
	AppendErr error
}

func (m *HistoryRepo) AppendHistory(ctx context.Context, e *models.LocationHistoryEntry) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, got := range m.Stored {
		if got.VehicleID == e.VehicleID && got.Timestamp == e.Timestamp {
			return nil
		}
	}
	m.Stored = append(m.Stored, *e)
	return nil
}

func (m *HistoryRepo) ListHistory(ctx context.Context, vehicleID string, since int64) ([]models.LocationHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.LocationHistoryEntry
	for _, e := range m.Stored {
		if e.VehicleID == vehicleID && e.Timestamp >= since {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Timestamp < out[k].Timestamp })
	return out, nil
}

type DocumentRepo struct {
	mu     sync.Mutex
	Stored []models.VehicleDocument
}

func (m *DocumentRepo) CreateDocument(ctx context.Context, d *models.VehicleDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stored = append(m.Stored, *d)
	return nil
}

func (m *DocumentRepo) ListExpiringDocuments(ctx context.Context, before int64) ([]models.VehicleDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.VehicleDocument
	for _, d := range m.Stored {
		if d.ExpiresAt <= before {
			out = append(out, d)
		}
	}
	return out, nil
}

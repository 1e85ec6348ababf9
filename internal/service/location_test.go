package service_test

import (
	"context"
	"errors"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/abdullah0300/fleet-management-sub001/internal/fanout"
	"github.com/abdullah0300/fleet-management-sub001/internal/jobs"
	"github.com/abdullah0300/fleet-management-sub001/internal/service"
	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
	"github.com/abdullah0300/fleet-management-sub001/pkg/repository/mock"
	"github.com/google/uuid"
)

func f64(v float64) *float64 { return &v }

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []fakeQueueEntry
	err      error
}

type fakeQueueEntry struct {
	typ     string
	payload []byte
}

func (q *fakeQueue) Enqueue(ctx context.Context, typ string, payload any, priority int, maxAttempts int) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, fakeQueueEntry{typ: typ, payload: b})
	return int64(len(q.enqueued)), nil
}

func (q *fakeQueue) entries() []fakeQueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]fakeQueueEntry, len(q.enqueued))
	copy(out, q.enqueued)
	return out
}

type fakeCache struct {
	mu     sync.Mutex
	stored map[string]*models.LocationSnapshot
	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{stored: make(map[string]*models.LocationSnapshot)}
}

func (c *fakeCache) SetLocation(ctx context.Context, vehicleID string, loc *models.LocationSnapshot) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := *loc
	c.stored[vehicleID] = &snap
	return nil
}

func (c *fakeCache) GetLocation(ctx context.Context, vehicleID string) (*models.LocationSnapshot, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stored[vehicleID], nil
}

func setupIngest(t *testing.T) (*service.LocationService, *mock.Mocks, *fakeQueue, *fanout.Bus, *fakeCache, string) {
	t.Helper()
	m := mock.NewMocks()
	queue := &fakeQueue{}
	bus := fanout.NewBus(16)
	fc := newFakeCache()

	driverID := uuid.NewString()
	vehicle := models.Vehicle{ID: uuid.NewString(), Registration: "KAA 100X", CurrentDriverID: &driverID}
	m.Vehicles.Stored = append(m.Vehicles.Stored, vehicle)

	svc := service.NewLocationService(m.Vehicles, queue, bus, fc, nil, nil)
	return svc, m, queue, bus, fc, driverID
}

func TestIngestRejections(t *testing.T) {
	svc, _, queue, _, _, driverID := setupIngest(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		driverID string
		req      service.IngestRequest
		wantErr  error
	}{
		{"no identity", "", service.IngestRequest{Lat: f64(0), Lng: f64(0)}, service.ErrUnauthorized},
		{"missing lat", driverID, service.IngestRequest{Lng: f64(36.8)}, service.ErrMissingCoordinates},
		{"missing lng", driverID, service.IngestRequest{Lat: f64(-1.3)}, service.ErrMissingCoordinates},
		{"no vehicle", uuid.NewString(), service.IngestRequest{Lat: f64(-1.3), Lng: f64(36.8)}, service.ErrNoVehicleAssigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Ingest(ctx, tt.driverID, tt.req); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// out-of-range coordinates and malformed timestamps are validation errors
	bad := []service.IngestRequest{
		{Lat: f64(91), Lng: f64(0)},
		{Lat: f64(-91), Lng: f64(0)},
		{Lat: f64(0), Lng: f64(181)},
		{Lat: f64(0), Lng: f64(-181)},
		{Lat: f64(0), Lng: f64(0), Timestamp: strPtr("yesterday")},
	}
	for i, req := range bad {
		var verr *service.ValidationError
		if _, err := svc.Ingest(ctx, driverID, req); !errors.As(err, &verr) {
			t.Fatalf("case %d: expected ValidationError, got %v", i, err)
		}
	}

	// nothing reached the outbox on any rejection
	if got := queue.entries(); len(got) != 0 {
		t.Fatalf("rejected samples must not enqueue history, got %d", len(got))
	}
}

func strPtr(s string) *string { return &s }

func TestIngestSuccessPropagates(t *testing.T) {
	svc, m, queue, bus, fc, driverID := setupIngest(t)
	ctx := context.Background()

	ch, _ := bus.Subscribe(ctx)
	ts := time.Now().UTC().Format(time.RFC3339)

	vehicleID, err := svc.Ingest(ctx, driverID, service.IngestRequest{
		Lat: f64(-1.2921), Lng: f64(36.8219), Heading: f64(45), Speed: f64(10), Timestamp: &ts,
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if vehicleID != m.Vehicles.Stored[0].ID {
		t.Fatalf("vehicle id = %s", vehicleID)
	}

	// critical write landed on the vehicle row
	v, _ := m.Vehicles.GetVehicleByID(ctx, vehicleID)
	if v.Location == nil || v.Location.Lat != -1.2921 || v.Location.Heading != 45 {
		t.Fatalf("snapshot not stored: %#v", v.Location)
	}

	// history rode the outbox
	entries := queue.entries()
	if len(entries) != 1 || entries[0].typ != jobs.TypeHistoryAppend {
		t.Fatalf("expected one %s outbox job, got %#v", jobs.TypeHistoryAppend, entries)
	}

	// the live feed saw the sample
	select {
	case e := <-ch:
		if e.VehicleID != vehicleID || e.Lat == nil || *e.Lat != -1.2921 {
			t.Fatalf("bus event wrong: %#v", e)
		}
	default:
		t.Fatalf("no event on the bus")
	}

	// the cache was refreshed
	cached, _ := fc.GetLocation(ctx, vehicleID)
	if cached == nil || cached.Lng != 36.8219 {
		t.Fatalf("cache not refreshed: %#v", cached)
	}
}

func TestIngestSideEffectFailuresDoNotFail(t *testing.T) {
	svc, m, queue, _, fc, driverID := setupIngest(t)
	ctx := context.Background()

	queue.err = errors.New("outbox down")
	fc.setErr = errors.New("redis down")

	vehicleID, err := svc.Ingest(ctx, driverID, service.IngestRequest{Lat: f64(-1.3), Lng: f64(36.8)})
	if err != nil {
		t.Fatalf("side effect failures must not fail the ingest: %v", err)
	}

	v, _ := m.Vehicles.GetVehicleByID(ctx, vehicleID)
	if v.Location == nil {
		t.Fatalf("critical write lost")
	}
}

func TestGetVehicleLocationCacheAside(t *testing.T) {
	svc, m, _, _, fc, _ := setupIngest(t)
	ctx := context.Background()
	vehicleID := m.Vehicles.Stored[0].ID

	// no snapshot anywhere
	if _, err := svc.GetVehicleLocation(ctx, vehicleID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no snapshot, got %v", err)
	}

	// store miss -> cache miss -> store hit backfills the cache
	loc := &models.LocationSnapshot{Lat: -1.29, Lng: 36.82, Timestamp: 123}
	if err := m.Vehicles.UpdateVehicleLocation(ctx, vehicleID, loc); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	got, err := svc.GetVehicleLocation(ctx, vehicleID)
	if err != nil || got.Lat != -1.29 {
		t.Fatalf("store read failed: %#v, %v", got, err)
	}
	if cached, _ := fc.GetLocation(ctx, vehicleID); cached == nil {
		t.Fatalf("cache not backfilled after store read")
	}

	// cache now answers even if the store stops cooperating
	m.Vehicles.GetErr = errors.New("db down")
	got, err = svc.GetVehicleLocation(ctx, vehicleID)
	if err != nil || got.Timestamp != 123 {
		t.Fatalf("cache hit failed: %#v, %v", got, err)
	}
}

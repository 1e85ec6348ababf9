package service

import (
	"context"
	"time"

	"log/slog"

	"github.com/abdullah0300/fleet-management-sub001/internal/cache"
	"github.com/abdullah0300/fleet-management-sub001/internal/fanout"
	"github.com/abdullah0300/fleet-management-sub001/internal/jobs"
	"github.com/abdullah0300/fleet-management-sub001/internal/metrics"
	"github.com/abdullah0300/fleet-management-sub001/internal/models"
	pub "github.com/abdullah0300/fleet-management-sub001/pkg/models"
	"github.com/abdullah0300/fleet-management-sub001/pkg/repository"
)

// IngestRequest is one location sample from a driver-held client. Lat/Lng
// are pointers so "absent" is distinguishable from coordinate zero.
type IngestRequest struct {
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Heading   *float64 `json:"heading,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
	Timestamp *string  `json:"timestamp,omitempty"` // RFC 3339
}

// Enqueuer hands non-critical side effects to the outbox queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, typ string, payload any, priority int, maxAttempts int) (int64, error)
}

// LocationService ingests driver location samples and serves current
// locations back to map and dashboard readers.
type LocationService struct {
	vehicles repository.VehicleRepo
	queue    Enqueuer
	bus      *fanout.Bus
	cache    cache.LocationCache // nil disables caching
	sink     metrics.Sink
	logger   *slog.Logger
}

func NewLocationService(vr repository.VehicleRepo, queue Enqueuer, bus *fanout.Bus, lc cache.LocationCache, sink metrics.Sink, logger *slog.Logger) *LocationService {
	if sink == nil {
		sink = metrics.Noop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocationService{vehicles: vr, queue: queue, bus: bus, cache: lc, sink: sink, logger: logger}
}

// Ingest records one sample for the vehicle currently assigned to driverID.
// The current-location overwrite is the critical write; the history append
// rides the outbox so its failure never fails the call, and the cache/fanout
// refreshes are best-effort.
func (s *LocationService) Ingest(ctx context.Context, driverID string, req IngestRequest) (string, error) {
	if driverID == "" {
		s.sink.IngestRejected(metrics.ReasonUnauthorized)
		return "", ErrUnauthorized
	}
	if req.Lat == nil || req.Lng == nil {
		s.sink.IngestRejected(metrics.ReasonBadRequest)
		return "", ErrMissingCoordinates
	}
	if *req.Lat < -90 || *req.Lat > 90 {
		s.sink.IngestRejected(metrics.ReasonBadRequest)
		return "", invalidf("lat", "must be within [-90, 90]")
	}
	if *req.Lng < -180 || *req.Lng > 180 {
		s.sink.IngestRejected(metrics.ReasonBadRequest)
		return "", invalidf("lng", "must be within [-180, 180]")
	}

	sampleTS := time.Now().UTC().UnixMilli()
	if req.Timestamp != nil && *req.Timestamp != "" {
		t, err := time.Parse(time.RFC3339, *req.Timestamp)
		if err != nil {
			s.sink.IngestRejected(metrics.ReasonBadRequest)
			return "", invalidf("timestamp", "must be RFC 3339")
		}
		sampleTS = t.UTC().UnixMilli()
	}

	vehicle, err := s.vehicles.GetVehicleByDriver(ctx, driverID)
	if err != nil {
		return "", err
	}
	if vehicle == nil {
		// The dominant expected failure: idle drivers keep reporting.
		s.sink.IngestRejected(metrics.ReasonNoVehicle)
		return "", ErrNoVehicleAssigned
	}

	loc := &pub.LocationSnapshot{
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		Timestamp:   sampleTS,
		LastUpdated: time.Now().UTC().UnixMilli(),
	}
	if req.Heading != nil {
		loc.Heading = *req.Heading
	}
	if req.Speed != nil {
		loc.Speed = *req.Speed
	}

	// Critical write: the live snapshot must reflect this sample.
	if err := s.vehicles.UpdateVehicleLocation(ctx, vehicle.ID, loc); err != nil {
		return "", err
	}

	s.appendHistory(ctx, vehicle.ID, driverID, loc)
	s.publish(ctx, vehicle.ID, loc)
	s.refreshCache(ctx, vehicle.ID, loc)

	s.sink.IngestAccepted()
	return vehicle.ID, nil
}

// GetVehicleLocation serves the current snapshot, cache first.
func (s *LocationService) GetVehicleLocation(ctx context.Context, vehicleID string) (*pub.LocationSnapshot, error) {
	if s.cache != nil {
		if loc, err := s.cache.GetLocation(ctx, vehicleID); err == nil && loc != nil {
			return loc, nil
		} else if err != nil {
			s.logger.Warn("location cache read failed", "vehicle_id", vehicleID, "err", err)
		}
	}

	vehicle, err := s.vehicles.GetVehicleByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil || vehicle.Location == nil {
		return nil, ErrNotFound
	}

	s.refreshCache(ctx, vehicleID, vehicle.Location)
	return vehicle.Location, nil
}

func (s *LocationService) appendHistory(ctx context.Context, vehicleID, driverID string, loc *pub.LocationSnapshot) {
	if s.queue == nil {
		return
	}
	payload := models.HistoryAppendPayload{
		VehicleID: vehicleID,
		DriverID:  driverID,
		Lat:       loc.Lat,
		Lng:       loc.Lng,
		Heading:   loc.Heading,
		Speed:     loc.Speed,
		Timestamp: loc.Timestamp,
	}
	if _, err := s.queue.Enqueue(ctx, jobs.TypeHistoryAppend, payload, 100, 5); err != nil {
		s.sink.ConsistencyWarning(metrics.WarnHistoryEnqueue)
		s.logger.Warn("history enqueue failed", "vehicle_id", vehicleID, "err", err)
	}
}

func (s *LocationService) publish(ctx context.Context, vehicleID string, loc *pub.LocationSnapshot) {
	if s.bus == nil {
		return
	}
	lat, lng := loc.Lat, loc.Lng
	event := fanout.Event{
		VehicleID:   vehicleID,
		Lat:         &lat,
		Lng:         &lng,
		Heading:     loc.Heading,
		Speed:       loc.Speed,
		Timestamp:   loc.Timestamp,
		LastUpdated: loc.LastUpdated,
	}
	if err := s.bus.Emit(ctx, event); err != nil {
		s.sink.ConsistencyWarning(metrics.WarnFanoutPublish)
		s.logger.Warn("fanout publish failed", "vehicle_id", vehicleID, "err", err)
	}
}

func (s *LocationService) refreshCache(ctx context.Context, vehicleID string, loc *pub.LocationSnapshot) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetLocation(ctx, vehicleID, loc); err != nil {
		s.sink.ConsistencyWarning(metrics.WarnCacheWrite)
		s.logger.Warn("location cache write failed", "vehicle_id", vehicleID, "err", err)
	}
}

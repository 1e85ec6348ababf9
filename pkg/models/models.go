package models

// Domain models matching the database schema in db/migrations/0001_init.sql

// Job statuses.
const (
	JobStatusPending    = "pending"
	JobStatusAssigned   = "assigned"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusCancelled  = "cancelled"
)

// Manifest statuses.
const (
	ManifestStatusDraft     = "draft"
	ManifestStatusScheduled = "scheduled"
	ManifestStatusInTransit = "in_transit"
	ManifestStatusCompleted = "completed"
	ManifestStatusCancelled = "cancelled"
)

// Driver statuses.
const (
	DriverStatusAvailable = "available"
	DriverStatusOnTrip    = "on_trip"
	DriverStatusOffDuty   = "off_duty"
)

type Driver struct {
	ID           string  `json:"id" db:"id"`
	Name         string  `json:"name" db:"name"`
	Email        string  `json:"email" db:"email"`
	Status       string  `json:"status" db:"status"`
	VehicleID    *string `json:"vehicle_id,omitempty" db:"vehicle_id"`
	PasswordHash string  `json:"-" db:"password_hash"`
	Created      int64   `json:"created" db:"created"`
	Updated      int64   `json:"updated" db:"updated"`
}

// Vehicle carries its current-location snapshot inline; the snapshot columns
// are overwritten in place on every ingest and stay nil until the first
// sample arrives.
type Vehicle struct {
	ID              string            `json:"id" db:"id"`
	Registration    string            `json:"registration" db:"registration"`
	CurrentDriverID *string           `json:"current_driver_id,omitempty" db:"current_driver_id"`
	Location        *LocationSnapshot `json:"location,omitempty"`
	Created         int64             `json:"created" db:"created"`
	Updated         int64             `json:"updated" db:"updated"`
}

// LocationSnapshot is the latest known position of a vehicle. Timestamps are
// unix milliseconds UTC.
type LocationSnapshot struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Heading     float64 `json:"heading"`
	Speed       float64 `json:"speed"`
	Timestamp   int64   `json:"timestamp"`
	LastUpdated int64   `json:"last_updated"`
}

// Job invariant: ManifestID is non-nil iff SequenceOrder is non-nil
// (backed by a CHECK constraint in the schema).
type Job struct {
	ID            string  `json:"id" db:"id"`
	JobNumber     string  `json:"job_number" db:"job_number"`
	Status        string  `json:"status" db:"status"`
	CustomerName  string  `json:"customer_name" db:"customer_name"`
	DriverID      *string `json:"driver_id,omitempty" db:"driver_id"`
	VehicleID     *string `json:"vehicle_id,omitempty" db:"vehicle_id"`
	ManifestID    *string `json:"manifest_id,omitempty" db:"manifest_id"`
	SequenceOrder *int64  `json:"sequence_order,omitempty" db:"sequence_order"`
	Created       int64   `json:"created" db:"created"`
	Updated       int64   `json:"updated" db:"updated"`
}

type Manifest struct {
	ID             string  `json:"id" db:"id"`
	ManifestNumber string  `json:"manifest_number" db:"manifest_number"`
	Status         string  `json:"status" db:"status"`
	DriverID       *string `json:"driver_id,omitempty" db:"driver_id"`
	VehicleID      *string `json:"vehicle_id,omitempty" db:"vehicle_id"`
	ScheduledDate  string  `json:"scheduled_date" db:"scheduled_date"`
	Created        int64   `json:"created" db:"created"`
	Updated        int64   `json:"updated" db:"updated"`
}

// LocationHistoryEntry rows are append-only; the service never updates or
// deletes them (retention is an operational concern).
type LocationHistoryEntry struct {
	ID        int64   `json:"id" db:"id"`
	VehicleID string  `json:"vehicle_id" db:"vehicle_id"`
	DriverID  string  `json:"driver_id" db:"driver_id"`
	Lat       float64 `json:"lat" db:"lat"`
	Lng       float64 `json:"lng" db:"lng"`
	Heading   float64 `json:"heading" db:"heading"`
	Speed     float64 `json:"speed" db:"speed"`
	Timestamp int64   `json:"timestamp" db:"ts"`
	Created   int64   `json:"created" db:"created"`
}

type ProofOfDelivery struct {
	JobID         string `json:"job_id" db:"job_id"`
	RecipientName string `json:"recipient_name" db:"recipient_name"`
	Note          string `json:"note,omitempty" db:"note"`
	PhotoRef      string `json:"photo_ref,omitempty" db:"photo_ref"`
	CapturedAt    int64  `json:"captured_at" db:"captured_at"`
}

type VehicleDocument struct {
	ID        string `json:"id" db:"id"`
	VehicleID string `json:"vehicle_id" db:"vehicle_id"`
	DocType   string `json:"doc_type" db:"doc_type"`
	Reference string `json:"reference" db:"reference"`
	ExpiresAt int64  `json:"expires_at" db:"expires_at"`
	Created   int64  `json:"created" db:"created"`
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
	"github.com/abdullah0300/fleet-management-sub001/pkg/repository"
)

const manifestColumns = `id, manifest_number, status, driver_id, vehicle_id, scheduled_date, created, updated`

func (r *SQLiteRepo) CreateManifest(ctx context.Context, m *models.Manifest) error {
	if m == nil {
		return fmt.Errorf("manifest is nil")
	}
	if m.Status == "" {
		m.Status = models.ManifestStatusDraft
	}

	ts := now()
	m.Created = ts
	m.Updated = ts
	_, err := r.conn.Exec(ctx, `INSERT INTO manifests (id, manifest_number, status, driver_id, vehicle_id, scheduled_date, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ManifestNumber, m.Status, m.DriverID, m.VehicleID, m.ScheduledDate, ts, ts)
	return err
}

func (r *SQLiteRepo) GetManifestByID(ctx context.Context, id string) (*models.Manifest, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+manifestColumns+` FROM manifests WHERE id = ?`, id)
	m, err := scanManifestFrom(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *SQLiteRepo) ListManifestJobs(ctx context.Context, manifestID string) ([]models.Job, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+jobColumns+` FROM jobs WHERE manifest_id = ? ORDER BY sequence_order ASC`, manifestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		j, err := scanJobFrom(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// AttachJob attaches a job to a manifest inside one transaction. The next
// sequence number is derived from MAX(sequence_order) within the same
// transaction, so concurrent adds cannot hand out the same slot.
func (r *SQLiteRepo) AttachJob(ctx context.Context, manifestID, jobID string, seq *int64) (*models.Job, error) {
	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var driverID, vehicleID sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT driver_id, vehicle_id FROM manifests WHERE id = ?`, manifestID).Scan(&driverID, &vehicleID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("manifest %s: %w", manifestID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var sequence int64
	if seq != nil {
		sequence = *seq
	} else {
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(sequence_order), 0) + 1 FROM jobs WHERE manifest_id = ?`, manifestID).Scan(&sequence); err != nil {
			return nil, fmt.Errorf("next sequence: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `UPDATE jobs SET manifest_id = ?, sequence_order = ?, driver_id = ?, vehicle_id = ?, status = ?, updated = ? WHERE id = ?`,
		manifestID, sequence, driverID, vehicleID, models.JobStatusAssigned, now(), jobID)
	if err != nil {
		return nil, fmt.Errorf("attach job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("job %s: %w", jobID, repository.ErrNotFound)
	}

	row := tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, jobID)
	j, err := scanJobFrom(row.Scan)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return j, nil
}

// DetachJob releases a job from a manifest. The job becomes eligible for the
// pool again and for attachment to a different manifest.
func (r *SQLiteRepo) DetachJob(ctx context.Context, jobID, manifestID string) error {
	res, err := r.conn.Exec(ctx, `UPDATE jobs SET manifest_id = NULL, sequence_order = NULL, driver_id = NULL, vehicle_id = NULL, status = ?, updated = ? WHERE id = ? AND manifest_id = ?`,
		models.JobStatusPending, now(), jobID, manifestID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("job %s on manifest %s: %w", jobID, manifestID, repository.ErrNotFound)
	}
	return nil
}

// UpdateAssignment reassigns the manifest's driver and/or vehicle and keeps
// attached jobs and the driver record consistent, all in one transaction.
// Re-running with the same arguments is a no-op, so callers may retry.
func (r *SQLiteRepo) UpdateAssignment(ctx context.Context, manifestID string, driverID, vehicleID *string) (*models.Manifest, error) {
	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+manifestColumns+` FROM manifests WHERE id = ?`, manifestID)
	m, err := scanManifestFrom(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("manifest %s: %w", manifestID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	changed := false
	if driverID != nil && (m.DriverID == nil || *m.DriverID != *driverID) {
		m.DriverID = driverID
		changed = true
	}
	if vehicleID != nil && (m.VehicleID == nil || *m.VehicleID != *vehicleID) {
		m.VehicleID = vehicleID
		changed = true
	}
	if m.Status == models.ManifestStatusDraft && m.DriverID != nil && m.VehicleID != nil {
		m.Status = models.ManifestStatusScheduled
	}
	m.Updated = now()

	if _, err := tx.ExecContext(ctx, `UPDATE manifests SET driver_id = ?, vehicle_id = ?, status = ?, updated = ? WHERE id = ?`,
		m.DriverID, m.VehicleID, m.Status, m.Updated, manifestID); err != nil {
		return nil, fmt.Errorf("update manifest: %w", err)
	}

	if changed {
		jobStatus := models.JobStatusPending
		if m.DriverID != nil {
			jobStatus = models.JobStatusAssigned
		}
		if _, err := tx.ExecContext(ctx, `UPDATE jobs SET driver_id = ?, vehicle_id = ?, status = ?, updated = ? WHERE manifest_id = ?`,
			m.DriverID, m.VehicleID, jobStatus, now(), manifestID); err != nil {
			return nil, fmt.Errorf("cascade to jobs: %w", err)
		}
	}

	if driverID != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE drivers SET status = ?, vehicle_id = ?, updated = ? WHERE id = ?`,
			models.DriverStatusOnTrip, m.VehicleID, now(), *driverID); err != nil {
			return nil, fmt.Errorf("update driver: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}

func scanManifestFrom(scan func(dest ...any) error) (*models.Manifest, error) {
	var m models.Manifest
	var driverID, vehicleID sql.NullString
	if err := scan(&m.ID, &m.ManifestNumber, &m.Status, &driverID, &vehicleID, &m.ScheduledDate, &m.Created, &m.Updated); err != nil {
		return nil, err
	}
	if driverID.Valid {
		m.DriverID = &driverID.String
	}
	if vehicleID.Valid {
		m.VehicleID = &vehicleID.String
	}

	return &m, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
	"github.com/abdullah0300/fleet-management-sub001/pkg/repository"
)

const jobColumns = `id, job_number, status, customer_name, driver_id, vehicle_id, manifest_id, sequence_order, created, updated`

func (r *SQLiteRepo) CreateJob(ctx context.Context, j *models.Job) error {
	if j == nil {
		return fmt.Errorf("job is nil")
	}
	if j.Status == "" {
		j.Status = models.JobStatusPending
	}

	ts := now()
	j.Created = ts
	j.Updated = ts
	_, err := r.conn.Exec(ctx, `INSERT INTO jobs (id, job_number, status, customer_name, driver_id, vehicle_id, manifest_id, sequence_order, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.JobNumber, j.Status, j.CustomerName, j.DriverID, j.VehicleID, j.ManifestID, j.SequenceOrder, ts, ts)
	return err
}

func (r *SQLiteRepo) GetJobByID(ctx context.Context, id string) (*models.Job, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanJobFrom(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return j, err
}

func (r *SQLiteRepo) ListJobs(ctx context.Context, filter repository.JobFilter) ([]models.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs`
	var args []any
	var where []string
	if filter.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, filter.Status)
	}
	if filter.Unassigned {
		where = append(where, `manifest_id IS NULL`)
	}
	for i, w := range where {
		if i == 0 {
			q += ` WHERE ` + w
		} else {
			q += ` AND ` + w
		}
	}
	q += ` ORDER BY created ASC`
	if filter.Limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.conn.QueryRows(ctx, q, args...)
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

// RecordProofOfDelivery stores the proof fields on the job row and marks it
// completed.
func (r *SQLiteRepo) RecordProofOfDelivery(ctx context.Context, pod *models.ProofOfDelivery) error {
	if pod == nil {
		return fmt.Errorf("proof is nil")
	}

	res, err := r.conn.Exec(ctx, `UPDATE jobs SET pod_recipient = ?, pod_note = ?, pod_photo_ref = ?, pod_captured = ?, status = ?, updated = ? WHERE id = ?`,
		pod.RecipientName, pod.Note, pod.PhotoRef, pod.CapturedAt, models.JobStatusCompleted, now(), pod.JobID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanJobFrom(scan func(dest ...any) error) (*models.Job, error) {
	var j models.Job
	var driverID, vehicleID, manifestID sql.NullString
	var seq sql.NullInt64
	if err := scan(&j.ID, &j.JobNumber, &j.Status, &j.CustomerName, &driverID, &vehicleID, &manifestID, &seq, &j.Created, &j.Updated); err != nil {
		return nil, err
	}
	if driverID.Valid {
		j.DriverID = &driverID.String
	}
	if vehicleID.Valid {
		j.VehicleID = &vehicleID.String
	}
	if manifestID.Valid {
		j.ManifestID = &manifestID.String
	}
	if seq.Valid {
		j.SequenceOrder = &seq.Int64
	}

	return &j, nil
}

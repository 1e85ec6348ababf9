package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
	"github.com/abdullah0300/fleet-management-sub001/pkg/repository"
)

const vehicleColumns = `id, registration, current_driver_id, loc_lat, loc_lng, loc_heading, loc_speed, loc_timestamp, loc_updated, created, updated`

func (r *SQLiteRepo) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	if v == nil {
		return fmt.Errorf("vehicle is nil")
	}

	ts := now()
	v.Created = ts
	v.Updated = ts
	_, err := r.conn.Exec(ctx, `INSERT INTO vehicles (id, registration, current_driver_id, created, updated) VALUES (?, ?, ?, ?, ?)`,
		v.ID, v.Registration, v.CurrentDriverID, ts, ts)
	return err
}

func (r *SQLiteRepo) GetVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?`, id)
	return scanVehicle(row)
}

func (r *SQLiteRepo) GetVehicleByDriver(ctx context.Context, driverID string) (*models.Vehicle, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE current_driver_id = ?`, driverID)
	return scanVehicle(row)
}

func (r *SQLiteRepo) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY registration`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Vehicle
	for rows.Next() {
		v, err := scanVehicleRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// UpdateVehicleLocation overwrites the vehicle's current-location snapshot in
// place. This is the critical write of the ingest path.
func (r *SQLiteRepo) UpdateVehicleLocation(ctx context.Context, vehicleID string, loc *models.LocationSnapshot) error {
	if loc == nil {
		return fmt.Errorf("location is nil")
	}

	res, err := r.conn.Exec(ctx, `UPDATE vehicles SET loc_lat = ?, loc_lng = ?, loc_heading = ?, loc_speed = ?, loc_timestamp = ?, loc_updated = ?, updated = ? WHERE id = ?`,
		loc.Lat, loc.Lng, loc.Heading, loc.Speed, loc.Timestamp, loc.LastUpdated, now(), vehicleID)
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

func scanVehicle(row *sql.Row) (*models.Vehicle, error) {
	v, err := scanVehicleFrom(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return v, err
}

func scanVehicleRow(rows *sql.Rows) (*models.Vehicle, error) {
	return scanVehicleFrom(rows.Scan)
}

func scanVehicleFrom(scan func(dest ...any) error) (*models.Vehicle, error) {
	var v models.Vehicle
	var driverID sql.NullString
	var lat, lng, heading, speed sql.NullFloat64
	var locTS, locUpdated sql.NullInt64
	if err := scan(&v.ID, &v.Registration, &driverID, &lat, &lng, &heading, &speed, &locTS, &locUpdated, &v.Created, &v.Updated); err != nil {
		return nil, err
	}
	if driverID.Valid {
		v.CurrentDriverID = &driverID.String
	}
	if lat.Valid && lng.Valid {
		v.Location = &models.LocationSnapshot{
			Lat:         lat.Float64,
			Lng:         lng.Float64,
			Heading:     heading.Float64,
			Speed:       speed.Float64,
			Timestamp:   locTS.Int64,
			LastUpdated: locUpdated.Int64,
		}
	}

	return &v, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
)

func (r *SQLiteRepo) CreateDriver(ctx context.Context, d *models.Driver) error {
	if d == nil {
		return fmt.Errorf("driver is nil")
	}
	if d.Status == "" {
		d.Status = models.DriverStatusAvailable
	}

	ts := now()
	d.Created = ts
	d.Updated = ts
	_, err := r.conn.Exec(ctx, `INSERT INTO drivers (id, name, email, password_hash, status, vehicle_id, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Email, d.PasswordHash, d.Status, d.VehicleID, ts, ts)
	return err
}

func (r *SQLiteRepo) GetDriverByID(ctx context.Context, id string) (*models.Driver, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, email, password_hash, status, vehicle_id, created, updated FROM drivers WHERE id = ?`, id)
	return scanDriver(row)
}

func (r *SQLiteRepo) GetDriverByEmail(ctx context.Context, email string) (*models.Driver, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, email, password_hash, status, vehicle_id, created, updated FROM drivers WHERE email = ?`, email)
	return scanDriver(row)
}

func (r *SQLiteRepo) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, name, email, password_hash, status, vehicle_id, created, updated FROM drivers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Driver
	for rows.Next() {
		var d models.Driver
		var vehicleID sql.NullString
		if err := rows.Scan(&d.ID, &d.Name, &d.Email, &d.PasswordHash, &d.Status, &vehicleID, &d.Created, &d.Updated); err != nil {
			return nil, err
		}
		if vehicleID.Valid {
			d.VehicleID = &vehicleID.String
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDriver(row *sql.Row) (*models.Driver, error) {
	var d models.Driver
	var vehicleID sql.NullString
	if err := row.Scan(&d.ID, &d.Name, &d.Email, &d.PasswordHash, &d.Status, &vehicleID, &d.Created, &d.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}
	if vehicleID.Valid {
		d.VehicleID = &vehicleID.String
	}

	return &d, nil
}

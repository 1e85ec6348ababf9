package sqlite

import (
	"context"
	"fmt"

	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
)

// AppendHistory inserts one trail row. The (vehicle_id, ts) unique index
// makes replays from the outbox worker no-ops.
func (r *SQLiteRepo) AppendHistory(ctx context.Context, e *models.LocationHistoryEntry) error {
	if e == nil {
		return fmt.Errorf("history entry is nil")
	}

	_, err := r.conn.Exec(ctx, `INSERT OR IGNORE INTO vehicle_location_history (vehicle_id, driver_id, lat, lng, heading, speed, ts, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.VehicleID, e.DriverID, e.Lat, e.Lng, e.Heading, e.Speed, e.Timestamp, now())
	return err
}

func (r *SQLiteRepo) ListHistory(ctx context.Context, vehicleID string, since int64) ([]models.LocationHistoryEntry, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, vehicle_id, driver_id, lat, lng, heading, speed, ts, created FROM vehicle_location_history WHERE vehicle_id = ? AND ts >= ? ORDER BY ts ASC`, vehicleID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LocationHistoryEntry
	for rows.Next() {
		var e models.LocationHistoryEntry
		if err := rows.Scan(&e.ID, &e.VehicleID, &e.DriverID, &e.Lat, &e.Lng, &e.Heading, &e.Speed, &e.Timestamp, &e.Created); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

package sqlite

import (
	"context"
	"fmt"

	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
)

func (r *SQLiteRepo) CreateDocument(ctx context.Context, d *models.VehicleDocument) error {
	if d == nil {
		return fmt.Errorf("document is nil")
	}

	d.Created = now()
	_, err := r.conn.Exec(ctx, `INSERT INTO vehicle_documents (id, vehicle_id, doc_type, reference, expires_at, created) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.VehicleID, d.DocType, d.Reference, d.ExpiresAt, d.Created)
	return err
}

func (r *SQLiteRepo) ListExpiringDocuments(ctx context.Context, before int64) ([]models.VehicleDocument, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, vehicle_id, doc_type, reference, expires_at, created FROM vehicle_documents WHERE expires_at <= ? ORDER BY expires_at ASC`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.VehicleDocument
	for rows.Next() {
		var d models.VehicleDocument
		if err := rows.Scan(&d.ID, &d.VehicleID, &d.DocType, &d.Reference, &d.ExpiresAt, &d.Created); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

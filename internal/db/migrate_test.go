package db_test

import (
	"context"
	"testing"

	dbfs "github.com/abdullah0300/fleet-management-sub001/db"
	"github.com/abdullah0300/fleet-management-sub001/internal/db"
)

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()

	d, err := db.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	defer d.Close()

	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	// Run again to ensure idempotency
	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}

	var count int
	row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan schema_migrations count: %v", err)
	}
	if count < 1 {
		t.Fatalf("expected at least 1 migration recorded, got %d", count)
	}

	// core tables exist after migration
	for _, table := range []string{"drivers", "vehicles", "manifests", "jobs", "vehicle_location_history", "vehicle_documents", "outbox_jobs", "dead_letter_jobs"} {
		var name string
		row := d.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		if err := row.Scan(&name); err != nil {
			t.Fatalf("expected table %s to exist: %v", table, err)
		}
	}
}

func TestJobSlotConstraint(t *testing.T) {
	ctx := context.Background()

	d, err := db.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	defer d.Close()

	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	// a sequence without a manifest violates the slot invariant
	_, err = d.Exec(ctx, `INSERT INTO jobs (id, job_number, status, customer_name, sequence_order, created, updated) VALUES ('j1', 'JOB-1', 'pending', 'acme', 3, 0, 0)`)
	if err == nil {
		t.Fatalf("expected CHECK violation for sequence_order without manifest_id")
	}
}

package sqlite

import (
	"time"

	"log/slog"

	"github.com/abdullah0300/fleet-management-sub001/internal/db"
	"github.com/abdullah0300/fleet-management-sub001/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.DriverRepo = (*SQLiteRepo)(nil)
var _ repository.VehicleRepo = (*SQLiteRepo)(nil)
var _ repository.JobRepo = (*SQLiteRepo)(nil)
var _ repository.ManifestRepo = (*SQLiteRepo)(nil)
var _ repository.LocationHistoryRepo = (*SQLiteRepo)(nil)
var _ repository.DocumentRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

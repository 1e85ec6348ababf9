package service

import (
	"context"
	"time"

	"log/slog"

	"github.com/abdullah0300/fleet-management-sub001/internal/metrics"
	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
	"github.com/abdullah0300/fleet-management-sub001/pkg/repository"
)

// DocumentService tracks vehicle document expiry. The scan is scheduled by
// cron in main; notification delivery is out of scope, so findings surface
// through logs and the metrics gauge.
type DocumentService struct {
	docs          repository.DocumentRepo
	warningWindow time.Duration
	sink          metrics.Sink
	logger        *slog.Logger
}

func NewDocumentService(dr repository.DocumentRepo, warningWindow time.Duration, sink metrics.Sink, logger *slog.Logger) *DocumentService {
	if warningWindow <= 0 {
		warningWindow = 30 * 24 * time.Hour
	}
	if sink == nil {
		sink = metrics.Noop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentService{docs: dr, warningWindow: warningWindow, sink: sink, logger: logger}
}

// ListExpiring returns documents expiring within the given window
// (the configured warning window when zero).
func (s *DocumentService) ListExpiring(ctx context.Context, within time.Duration) ([]models.VehicleDocument, error) {
	if within <= 0 {
		within = s.warningWindow
	}
	before := time.Now().UTC().Add(within).UnixMilli()
	return s.docs.ListExpiringDocuments(ctx, before)
}

// ScanExpiring runs one expiry sweep and reports how many documents fall
// inside the warning window.
func (s *DocumentService) ScanExpiring(ctx context.Context) (int, error) {
	docs, err := s.ListExpiring(ctx, 0)
	if err != nil {
		return 0, err
	}

	for _, d := range docs {
		s.logger.Warn("vehicle document expiring",
			slog.String("document_id", d.ID),
			slog.String("vehicle_id", d.VehicleID),
			slog.String("doc_type", d.DocType),
			slog.Int64("expires_at", d.ExpiresAt),
		)
	}
	s.sink.DocumentsExpiring(len(docs))
	return len(docs), nil
}

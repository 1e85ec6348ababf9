package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abdullah0300/fleet-management-sub001/internal/models"
	pub "github.com/abdullah0300/fleet-management-sub001/pkg/models"
	"github.com/abdullah0300/fleet-management-sub001/pkg/repository"
)

// HistoryAppendHandler drains location.append_history jobs into the
// vehicle_location_history table. The insert is idempotent per
// (vehicle, timestamp), so retries after partial failures are safe.
func HistoryAppendHandler(repo repository.LocationHistoryRepo) Handler {
	return func(ctx context.Context, j *models.BackgroundJob) error {
		var p models.HistoryAppendPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return fmt.Errorf("decode history payload: %w", err)
		}
		if p.VehicleID == "" {
			return fmt.Errorf("history payload missing vehicle_id")
		}

		entry := &pub.LocationHistoryEntry{
			VehicleID: p.VehicleID,
			DriverID:  p.DriverID,
			Lat:       p.Lat,
			Lng:       p.Lng,
			Heading:   p.Heading,
			Speed:     p.Speed,
			Timestamp: p.Timestamp,
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	}
}

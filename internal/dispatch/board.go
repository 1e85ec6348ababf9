package dispatch

import (
	"context"
	"fmt"

	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
)

// Board is the in-memory editing surface for assembling one manifest before
// commit: a pool of unassigned jobs and an ordered manifest draft. Jobs move
// between the two containers and reorder within the draft with no
// persistence side effects until Commit.
//
// A Board belongs to a single dispatcher session; it is not safe for
// concurrent use.
type Board struct {
	pool     []models.Job
	manifest []models.Job

	driverID      *string
	vehicleID     *string
	scheduledDate string

	activeDragID string
}

// NewBoard seeds the pool from a snapshot of pending, unassigned jobs.
func NewBoard(pool []models.Job) *Board {
	b := &Board{pool: make([]models.Job, len(pool))}
	copy(b.pool, pool)
	return b
}

func (b *Board) SetDriver(id *string)        { b.driverID = id }
func (b *Board) SetVehicle(id *string)       { b.vehicleID = id }
func (b *Board) SetScheduledDate(date string) { b.scheduledDate = date }

// PoolJobs returns the pool in display order.
func (b *Board) PoolJobs() []models.Job {
	out := make([]models.Job, len(b.pool))
	copy(out, b.pool)
	return out
}

// ManifestJobs returns the draft in delivery order.
func (b *Board) ManifestJobs() []models.Job {
	out := make([]models.Job, len(b.manifest))
	copy(out, b.manifest)
	return out
}

// MoveToManifest moves a job from the pool to the tail of the draft.
// A job not in the pool is a no-op.
func (b *Board) MoveToManifest(jobID string) {
	i := indexOf(b.pool, jobID)
	if i < 0 {
		return
	}
	job := b.pool[i]
	b.pool = append(b.pool[:i], b.pool[i+1:]...)
	b.manifest = append(b.manifest, job)
}

// MoveToPool moves a job from the draft back to the head of the pool, so the
// job lands in a deterministic spot instead of vanishing.
func (b *Board) MoveToPool(jobID string) {
	i := indexOf(b.manifest, jobID)
	if i < 0 {
		return
	}
	job := b.manifest[i]
	b.manifest = append(b.manifest[:i], b.manifest[i+1:]...)
	b.pool = append([]models.Job{job}, b.pool...)
}

// Reorder repositions a job within the draft, shifting the others. The
// target index is clamped to the draft bounds.
func (b *Board) Reorder(jobID string, targetIndex int) {
	i := indexOf(b.manifest, jobID)
	if i < 0 {
		return
	}
	if targetIndex < 0 {
		targetIndex = 0
	}
	if targetIndex >= len(b.manifest) {
		targetIndex = len(b.manifest) - 1
	}
	if targetIndex == i {
		return
	}

	job := b.manifest[i]
	b.manifest = append(b.manifest[:i], b.manifest[i+1:]...)
	rest := append([]models.Job{job}, b.manifest[targetIndex:]...)
	b.manifest = append(b.manifest[:targetIndex], rest...)
}

// BeginDrag records the dragged job.
func (b *Board) BeginDrag(jobID string) {
	b.activeDragID = jobID
}

// DragOver optimistically applies a cross-container move as soon as the
// dragged job hovers a foreign container, so placement shows before drop.
// Hovering the container the job is already in is a no-op.
func (b *Board) DragOver(container Container) {
	if b.activeDragID == "" {
		return
	}
	switch container {
	case ContainerManifest:
		b.MoveToManifest(b.activeDragID)
	case ContainerPool:
		b.MoveToPool(b.activeDragID)
	}
}

// EndDrag performs the final same-container reorder and clears the drag
// marker. A negative target index means "leave where it is".
func (b *Board) EndDrag(targetIndex int) {
	if b.activeDragID == "" {
		return
	}
	if targetIndex >= 0 {
		b.Reorder(b.activeDragID, targetIndex)
	}
	b.activeDragID = ""
}

// ActiveDragID returns the id recorded by BeginDrag, or "".
func (b *Board) ActiveDragID() string { return b.activeDragID }

// Container identifies one of the board's two job lists.
type Container int

const (
	ContainerPool Container = iota
	ContainerManifest
)

// Committer is the slice of the commit pipeline the board needs.
type Committer interface {
	CreateManifest(ctx context.Context, driverID, vehicleID *string, scheduledDate string) (*models.Manifest, error)
	AddJob(ctx context.Context, manifestID, jobID string, seq *int64) (*models.Job, error)
}

// Commit persists the draft: one manifest, then each job in draft order so
// sequence numbers follow delivery order. The board is left untouched on
// failure so the dispatcher can retry or adjust.
func (b *Board) Commit(ctx context.Context, pipeline Committer) (*models.Manifest, error) {
	if len(b.manifest) == 0 {
		return nil, fmt.Errorf("manifest draft is empty")
	}

	m, err := pipeline.CreateManifest(ctx, b.driverID, b.vehicleID, b.scheduledDate)
	if err != nil {
		return nil, err
	}
	for _, job := range b.manifest {
		if _, err := pipeline.AddJob(ctx, m.ID, job.ID, nil); err != nil {
			return nil, fmt.Errorf("attach job %s: %w", job.ID, err)
		}
	}

	b.manifest = nil
	return m, nil
}

func indexOf(jobs []models.Job, id string) int {
	for i := range jobs {
		if jobs[i].ID == id {
			return i
		}
	}
	return -1
}

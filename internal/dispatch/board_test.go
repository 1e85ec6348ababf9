package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
)

func testJobs(n int) []models.Job {
	jobs := make([]models.Job, n)
	for i := range jobs {
		jobs[i] = models.Job{ID: fmt.Sprintf("job-%d", i), Status: models.JobStatusPending}
	}
	return jobs
}

func ids(jobs []models.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

// Every job stays in exactly one container no matter how it is shuffled.
func checkPartition(t *testing.T, b *Board, total int) {
	t.Helper()

	seen := make(map[string]int)
	for _, id := range ids(b.PoolJobs()) {
		seen[id]++
	}
	for _, id := range ids(b.ManifestJobs()) {
		seen[id]++
	}
	if len(seen) != total {
		t.Fatalf("expected %d distinct jobs across containers, got %d", total, len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("job %s appears %d times", id, n)
		}
	}
}

func TestBoardMoveBetweenContainers(t *testing.T) {
	b := NewBoard(testJobs(4))

	b.MoveToManifest("job-2")
	b.MoveToManifest("job-0")
	checkPartition(t, b, 4)

	got := ids(b.ManifestJobs())
	if len(got) != 2 || got[0] != "job-2" || got[1] != "job-0" {
		t.Fatalf("manifest order = %v, want [job-2 job-0]", got)
	}

	// Moving back lands at the head of the pool.
	b.MoveToPool("job-2")
	checkPartition(t, b, 4)
	pool := ids(b.PoolJobs())
	if pool[0] != "job-2" {
		t.Fatalf("pool head = %s, want job-2", pool[0])
	}
}

func TestBoardMoveUnknownJobIsNoop(t *testing.T) {
	b := NewBoard(testJobs(2))

	b.MoveToManifest("nope")
	b.MoveToPool("job-0") // not in manifest

	if len(b.PoolJobs()) != 2 || len(b.ManifestJobs()) != 0 {
		t.Fatalf("containers changed: pool=%v manifest=%v", ids(b.PoolJobs()), ids(b.ManifestJobs()))
	}
}

func TestBoardReorder(t *testing.T) {
	tests := []struct {
		name   string
		jobID  string
		target int
		want   []string
	}{
		{"to front", "job-3", 0, []string{"job-3", "job-0", "job-1", "job-2"}},
		{"clamped past end", "job-3", 99, []string{"job-0", "job-1", "job-2", "job-3"}},
		{"clamped negative", "job-2", -5, []string{"job-2", "job-0", "job-1", "job-3"}},
		{"same index no-op", "job-1", 1, []string{"job-0", "job-1", "job-2", "job-3"}},
	}

	// Each case starts from a fresh [job-0..job-3] draft.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard(testJobs(4))
			for _, id := range []string{"job-0", "job-1", "job-2", "job-3"} {
				b.MoveToManifest(id)
			}
			b.Reorder(tt.jobID, tt.target)
			got := ids(b.ManifestJobs())
			for i, want := range tt.want {
				if got[i] != want {
					t.Fatalf("order = %v, want %v", got, tt.want)
				}
			}
			checkPartition(t, b, 4)
		})
	}
}

func TestBoardDragLifecycle(t *testing.T) {
	b := NewBoard(testJobs(3))

	b.BeginDrag("job-1")
	b.DragOver(ContainerManifest)
	if got := ids(b.ManifestJobs()); len(got) != 1 || got[0] != "job-1" {
		t.Fatalf("manifest after drag over = %v, want [job-1]", got)
	}

	// Hovering the container it already sits in does nothing.
	b.DragOver(ContainerManifest)
	if got := b.ManifestJobs(); len(got) != 1 {
		t.Fatalf("duplicate insert on repeated drag over: %v", ids(got))
	}

	b.EndDrag(0)
	if b.ActiveDragID() != "" {
		t.Fatal("drag id not cleared on end")
	}
	checkPartition(t, b, 3)

	// EndDrag without BeginDrag is a no-op.
	b.EndDrag(0)
	checkPartition(t, b, 3)
}

type fakeCommitter struct {
	manifest *models.Manifest
	attached []string
	addErr   error
}

func (f *fakeCommitter) CreateManifest(_ context.Context, driverID, vehicleID *string, scheduledDate string) (*models.Manifest, error) {
	f.manifest = &models.Manifest{ID: "m-1", DriverID: driverID, VehicleID: vehicleID, ScheduledDate: scheduledDate}
	return f.manifest, nil
}

func (f *fakeCommitter) AddJob(_ context.Context, manifestID, jobID string, _ *int64) (*models.Job, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.attached = append(f.attached, jobID)
	return &models.Job{ID: jobID, ManifestID: &manifestID}, nil
}

func TestBoardCommitAttachesInDraftOrder(t *testing.T) {
	b := NewBoard(testJobs(3))
	b.MoveToManifest("job-2")
	b.MoveToManifest("job-0")
	driver := "d-1"
	b.SetDriver(&driver)
	b.SetScheduledDate("2026-09-01")

	fc := &fakeCommitter{}
	m, err := b.Commit(context.Background(), fc)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if m.ID != "m-1" {
		t.Fatalf("manifest id = %s", m.ID)
	}
	if len(fc.attached) != 2 || fc.attached[0] != "job-2" || fc.attached[1] != "job-0" {
		t.Fatalf("attach order = %v, want [job-2 job-0]", fc.attached)
	}
	if len(b.ManifestJobs()) != 0 {
		t.Fatal("draft not cleared after commit")
	}
}

func TestBoardCommitEmptyDraft(t *testing.T) {
	b := NewBoard(testJobs(1))
	if _, err := b.Commit(context.Background(), &fakeCommitter{}); err == nil {
		t.Fatal("expected error for empty draft")
	}
}

func TestBoardCommitFailureKeepsDraft(t *testing.T) {
	b := NewBoard(testJobs(2))
	b.MoveToManifest("job-0")

	fc := &fakeCommitter{addErr: errors.New("boom")}
	if _, err := b.Commit(context.Background(), fc); err == nil {
		t.Fatal("expected attach error to propagate")
	}
	if len(b.ManifestJobs()) != 1 {
		t.Fatal("draft lost after failed commit")
	}
}

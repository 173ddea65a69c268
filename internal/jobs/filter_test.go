package jobs

import (
	"testing"
	"time"

	"printerkit/internal/model"
)

func sampleJobs() []model.PrinterJob {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []model.PrinterJob{
		{ID: 1, State: model.JobCompleted, CreatedAt: base},
		{ID: 2, State: model.JobPending, CreatedAt: base.Add(time.Minute)},
		{ID: 3, State: model.JobProcessing, CreatedAt: base.Add(2 * time.Minute)},
		{ID: 4, State: model.JobCancelled, CreatedAt: base.Add(3 * time.Minute)},
		{ID: 5, State: model.JobPaused, CreatedAt: base.Add(4 * time.Minute)},
		{ID: 6, State: model.JobUnknown, CreatedAt: base.Add(5 * time.Minute)},
	}
}

func TestFilterActiveOnly(t *testing.T) {
	got := Filter(sampleJobs(), true)
	if len(got) != 3 {
		t.Fatalf("kept %d jobs, want 3", len(got))
	}
	for _, j := range got {
		switch j.State {
		case model.JobPending, model.JobProcessing, model.JobPaused:
		default:
			t.Errorf("job %d with state %v kept", j.ID, j.State)
		}
	}
}

func TestFilterPassthrough(t *testing.T) {
	in := sampleJobs()
	got := Filter(in, false)
	if len(got) != len(in) {
		t.Errorf("passthrough dropped jobs: %d != %d", len(got), len(in))
	}
}

func TestFilterIdempotent(t *testing.T) {
	once := Filter(sampleJobs(), true)
	twice := Filter(once, true)
	if len(once) != len(twice) {
		t.Errorf("second filter changed result: %d != %d", len(once), len(twice))
	}
}

func TestSortByCreated(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	list := []model.PrinterJob{
		{ID: 9, CreatedAt: base.Add(time.Hour)},
		{ID: 3, CreatedAt: base},
		{ID: 2, CreatedAt: base},
		{ID: 7, CreatedAt: base.Add(time.Minute)},
	}
	SortByCreated(list)
	wantOrder := []uint64{2, 3, 7, 9}
	for i, want := range wantOrder {
		if list[i].ID != want {
			t.Fatalf("position %d has job %d, want %d (full order %v)", i, list[i].ID, want, list)
		}
	}
}

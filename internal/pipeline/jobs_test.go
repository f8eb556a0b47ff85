package pipeline

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewJob(t *testing.T) {
	job := NewJob("site/_site")
	id, err := uuid.Parse(job.ID)
	if err != nil || id.Version() != 7 {
		t.Errorf("expected UUIDv7 job ID, got %q (%v)", job.ID, err)
	}
	if job.Status != StatusQueued || job.Phase != "queued" {
		t.Errorf("expected queued job, got %q/%q", job.Status, job.Phase)
	}
	if other := NewJob("x"); other.ID == job.ID {
		t.Error("expected distinct job IDs")
	}
}

func TestNewJobID_Sortable(t *testing.T) {
	a := newJobID()
	time.Sleep(2 * time.Millisecond)
	b := newJobID()
	if a >= b {
		t.Errorf("expected %q < %q", a, b)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusDiscovering, "discovering"},
		{StatusProcessing, "processing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("a.html: read failed")
	job.AddError("b.html: read failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "a.html: read failed" {
		t.Errorf("expected first error %q, got %q", "a.html: read failed", snap.Progress.Errors[0])
	}

	// The snapshot must not alias the job's error slice.
	snap.Progress.Errors[0] = "changed"
	if job.Snapshot().Progress.Errors[0] != "a.html: read failed" {
		t.Error("expected snapshot errors to be a copy")
	}
}

func TestJob_RecordPage(t *testing.T) {
	job := &Job{ID: "pages", UpdatedAt: time.Now()}
	job.SetTotalPages(5)
	for _, o := range []Outcome{OutcomeUpdated, OutcomeUpdated, OutcomeEmptied, OutcomeSkipped, OutcomeFailed} {
		job.RecordPage(o)
	}

	p := job.Snapshot().Progress
	if p.TotalPages != 5 || p.PagesProcessed != 5 {
		t.Errorf("expected 5/5 pages, got %d/%d", p.PagesProcessed, p.TotalPages)
	}
	if p.PagesUpdated != 2 || p.PagesEmptied != 1 || p.PagesSkipped != 1 || p.PagesFailed != 1 {
		t.Errorf("unexpected counts: %+v", p)
	}
}

func TestJob_SnapshotEmptyErrors(t *testing.T) {
	job := &Job{ID: "snap"}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice for JSON")
	}
}

func TestJobStore_Cleanup(t *testing.T) {
	store := NewJobStore(10 * time.Millisecond)

	old := &Job{ID: "old", UpdatedAt: time.Now().Add(-time.Second)}
	fresh := &Job{ID: "fresh", UpdatedAt: time.Now().Add(time.Hour)}
	store.Put(old)
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be evicted")
	}
	if store.Get("fresh") == nil {
		t.Error("expected fresh job to remain")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

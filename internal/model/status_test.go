package model

import "testing"

func TestCanTransitionCoreLifecycle(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{"", StatusPending, true},
		{"", StatusCached, true},
		{"", StatusDone, false},
		{StatusPending, StatusRunning, true},
		{StatusPending, StatusDone, false},
		{StatusRunning, StatusDone, true},
		{StatusRunning, StatusFailed, true},
		{StatusRunning, StatusCached, false},
		{StatusDone, StatusRunning, false},
		{StatusFailed, StatusRunning, false},
		{StatusCached, StatusRunning, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestTransitionJobStatusRejectsInvalidMove(t *testing.T) {
	job := ClipJob{JobID: "j1", Status: StatusDone}
	if err := TransitionJobStatus(&job, StatusRunning, ""); err == nil {
		t.Fatal("expected invalid transition error for done -> running")
	}
	if job.Status != StatusDone {
		t.Fatalf("job status changed on rejected transition: %s", job.Status)
	}

	if err := TransitionJobStatus(&job, StatusPending, "missing_local_output"); err != nil {
		t.Fatalf("done -> pending should be allowed: %v", err)
	}
	if job.Reason != "missing_local_output" {
		t.Fatalf("reason not recorded: %q", job.Reason)
	}
}

func TestRecomputeCounts(t *testing.T) {
	mf := ClipManifest{Jobs: []ClipJob{
		{Status: StatusPending},
		{Status: StatusCached},
		{Status: StatusDone},
		{Status: StatusDone},
		{Status: StatusFailed},
	}}
	RecomputeCounts(&mf)
	if mf.Total != 5 || mf.Pending != 1 || mf.Cached != 1 || mf.Done != 2 || mf.Failed != 1 || mf.Running != 0 {
		t.Fatalf("unexpected counts: %+v", mf)
	}
}

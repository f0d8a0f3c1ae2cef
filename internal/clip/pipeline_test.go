package clip

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"yt-clipper/internal/model"
	"yt-clipper/internal/runstore"
)

// pipelineTranscoder rejects encoder probes (forcing the software profile) and
// materializes every other invocation's output, failing titles matched by the
// embedded case pattern.
func pipelineTranscoder(t *testing.T) string {
	t.Helper()
	return writeTranscoder(t, `#!/usr/bin/env bash
for a in "$@"; do
  if [ "$a" = "lavfi" ]; then exit 1; fi
done
out="${@: -1}"
case "$out" in
  *Bad*)
    echo "Conversion failed!" >&2
    exit 1
    ;;
esac
head -c 4096 /dev/zero > "$out"
exit 0
`)
}

func TestRunProcessesAllJobsAndPersistsManifest(t *testing.T) {
	dir := t.TempDir()
	requests := []model.ClipRequest{
		{Title: "Intro", Start: 0, End: 10},
		{Title: "Mid Game", Start: 60, End: 90},
		{Title: "Finale", Start: 120, End: 150},
	}
	writeOutput(t, dir, SafeBaseName(2, "Mid Game")+CanonicalExt, 4096)

	resolver := &scriptedResolver{desc: muxedDescriptor()}
	var events []Event
	report, err := Run(context.Background(), Options{
		SourceURL: "https://source.example/v",
		OutputDir: dir,
		Requests:  requests,
		FFmpegBin: pipelineTranscoder(t),
		Locator:   resolver,
		OnEvent:   func(ev Event) { events = append(events, ev) },
	})
	if err != nil {
		t.Fatal(err)
	}

	if report.Total != 3 || report.Cached != 1 || report.Done != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	for i, job := range report.Jobs {
		if job.Index != i+1 {
			t.Fatalf("report jobs out of clip order: %+v", report.Jobs)
		}
	}

	var mf model.ClipManifest
	if err := runstore.ReadJSON(report.ManifestPath, &mf); err != nil {
		t.Fatal(err)
	}
	if mf.RunID != report.RunID || mf.Done != 2 || mf.Cached != 1 {
		t.Fatalf("persisted manifest disagrees with report: %+v", mf)
	}

	done := 0
	for _, ev := range events {
		if ev.Phase == "done" {
			done++
		}
	}
	if done != 2 {
		t.Fatalf("expected 2 done events, got %d: %+v", done, events)
	}

	for _, title := range []string{"Intro", "Finale"} {
		idx := 1
		if title == "Finale" {
			idx = 3
		}
		path := filepath.Join(dir, SafeBaseName(idx, title)+CanonicalExt)
		info, err := os.Stat(path)
		if err != nil || info.Size() <= 1024 {
			t.Fatalf("missing or truncated output %s: %v", path, err)
		}
	}
}

func TestRunIsolatesJobFailures(t *testing.T) {
	dir := t.TempDir()
	requests := []model.ClipRequest{
		{Title: "Bad Segment", Start: 0, End: 10},
		{Title: "Good Segment", Start: 10, End: 20},
	}

	resolver := &scriptedResolver{desc: muxedDescriptor()}
	report, err := Run(context.Background(), Options{
		SourceURL: "https://source.example/v",
		OutputDir: dir,
		Requests:  requests,
		FFmpegBin: pipelineTranscoder(t),
		Locator:   resolver,
	})
	if err != nil {
		t.Fatalf("one failing job must not abort the run: %v", err)
	}

	if report.Done != 1 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	failed := report.Jobs[0]
	if failed.Status != model.StatusFailed || failed.LastError == "" {
		t.Fatalf("failed job not recorded: %+v", failed)
	}
	if failed.Reason != "transcode_error" {
		t.Fatalf("failure reason = %q", failed.Reason)
	}

	logPath := filepath.Join(dir, "logs", SafeBaseName(1, "Bad Segment")+".log")
	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("expected a failure log at %s: %v", logPath, err)
	}
}

func TestRunSecondInvocationServesFromCache(t *testing.T) {
	dir := t.TempDir()
	requests := []model.ClipRequest{
		{Title: "One", Start: 0, End: 5},
		{Title: "Two", Start: 5, End: 10},
	}
	bin := pipelineTranscoder(t)
	resolver := &scriptedResolver{desc: muxedDescriptor()}

	opts := Options{
		SourceURL: "https://source.example/v",
		OutputDir: dir,
		Requests:  requests,
		FFmpegBin: bin,
		Locator:   resolver,
	}
	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	resolvesAfterFirst, _ := resolver.counts()

	report, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if report.Cached != 2 || report.Done != 0 {
		t.Fatalf("second run must find everything cached: %+v", report)
	}
	if resolves, _ := resolver.counts(); resolves != resolvesAfterFirst {
		t.Fatalf("cached run must not touch the resolver: %d -> %d", resolvesAfterFirst, resolves)
	}
}

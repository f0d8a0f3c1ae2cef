package cli

import (
	"os"
	"path/filepath"
	"testing"

	"yt-clipper/internal/model"
	"yt-clipper/internal/runstore"
)

func writeFakeBin(t *testing.T, dir, name, script string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
}

func setupHarness(t *testing.T) (clipsPath, outDir string) {
	t.Helper()
	tmp := t.TempDir()
	fakeBin := filepath.Join(tmp, "bin")
	if err := os.MkdirAll(fakeBin, 0o755); err != nil {
		t.Fatal(err)
	}

	infoPath := filepath.Join(tmp, "info.json")
	info := `{"id":"vid123","title":"Source","duration":600,"url":"https://cdn.example/muxed","vcodec":"avc1","acodec":"mp4a"}`
	if err := os.WriteFile(infoPath, []byte(info), 0o644); err != nil {
		t.Fatal(err)
	}

	writeFakeBin(t, fakeBin, "yt-dlp", `#!/usr/bin/env bash
set -euo pipefail
if printf '%s ' "$@" | grep -q -- '-J'; then
  cat "$YTDLP_FIXTURE"
  exit 0
fi
echo "unexpected yt-dlp invocation" >&2
exit 1
`)
	// Rejects encoder probes so the software profile wins, then materializes
	// clip outputs.
	writeFakeBin(t, fakeBin, "ffmpeg", `#!/usr/bin/env bash
for a in "$@"; do
  if [ "$a" = "lavfi" ]; then exit 1; fi
done
out="${@: -1}"
head -c 4096 /dev/zero > "$out"
exit 0
`)
	writeFakeBin(t, fakeBin, "ffprobe", `#!/usr/bin/env bash
echo "600.0"
`)

	t.Setenv("PATH", fakeBin+":"+os.Getenv("PATH"))
	t.Setenv("YTDLP_FIXTURE", infoPath)

	clipsPath = filepath.Join(tmp, "clips.json")
	clips := `{"clips":[
  {"title":"Opening","start_time":"0:05","end_time":"0:15"},
  {"title":"Highlight","start_time":65,"end_time":95}
]}`
	if err := os.WriteFile(clipsPath, []byte(clips), 0o644); err != nil {
		t.Fatal(err)
	}

	return clipsPath, filepath.Join(tmp, "out")
}

func TestHarnessExtractEndToEnd(t *testing.T) {
	clipsPath, outDir := setupHarness(t)

	err := Run([]string{"extract",
		"--source", "https://example.com/watch?v=vid123",
		"--clips", clipsPath,
		"--out", outDir,
		"--no-tui", "--json",
	})
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	var mf model.ClipManifest
	if err := runstore.ReadJSON(filepath.Join(outDir, "clips.json"), &mf); err != nil {
		t.Fatal(err)
	}
	if mf.Total != 2 || mf.Done != 2 || mf.Failed != 0 {
		t.Fatalf("unexpected manifest totals: %+v", mf)
	}

	for _, job := range mf.Jobs {
		info, err := os.Stat(job.OutputPath)
		if err != nil {
			t.Fatalf("missing output for job %d: %v", job.Index, err)
		}
		if info.Size() <= 1024 {
			t.Fatalf("truncated output for job %d", job.Index)
		}
	}
}

func TestHarnessExtractIsIdempotent(t *testing.T) {
	clipsPath, outDir := setupHarness(t)

	args := []string{"extract",
		"--source", "https://example.com/watch?v=vid123",
		"--clips", clipsPath,
		"--out", outDir,
		"--no-tui", "--json",
	}
	if err := Run(args); err != nil {
		t.Fatalf("first extract failed: %v", err)
	}
	if err := Run(args); err != nil {
		t.Fatalf("second extract failed: %v", err)
	}

	var mf model.ClipManifest
	if err := runstore.ReadJSON(filepath.Join(outDir, "clips.json"), &mf); err != nil {
		t.Fatal(err)
	}
	if mf.Cached != 2 || mf.Done != 0 {
		t.Fatalf("second run must reuse both outputs: %+v", mf)
	}
}

func TestHarnessExtractSurfacesFailures(t *testing.T) {
	clipsPath, outDir := setupHarness(t)

	// Swap in a transcoder that always fails.
	harnessDir := filepath.Dir(os.Getenv("YTDLP_FIXTURE"))
	writeFakeBin(t, filepath.Join(harnessDir, "bin"), "ffmpeg", `#!/usr/bin/env bash
for a in "$@"; do
  if [ "$a" = "lavfi" ]; then exit 1; fi
done
echo "Conversion failed!" >&2
exit 1
`)

	err := Run([]string{"extract",
		"--source", "https://example.com/watch?v=vid123",
		"--clips", clipsPath,
		"--out", outDir,
		"--no-tui", "--json",
	})
	if err == nil {
		t.Fatal("expected the command to report failed clips")
	}

	var mf model.ClipManifest
	if err := runstore.ReadJSON(filepath.Join(outDir, "clips.json"), &mf); err != nil {
		t.Fatal(err)
	}
	if mf.Failed != 2 {
		t.Fatalf("expected both clips failed: %+v", mf)
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := Run([]string{"frobnicate"}); err == nil {
		t.Fatal("expected an error for an unknown command")
	}
}

func TestPlanCommandListsWork(t *testing.T) {
	clipsPath, outDir := setupHarness(t)
	if err := Run([]string{"plan", "--clips", clipsPath, "--out", outDir, "--json"}); err != nil {
		t.Fatalf("plan failed: %v", err)
	}
}

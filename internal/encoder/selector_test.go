package encoder

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// fakeFFmpeg succeeds only when the probed codec matches accept, and counts
// every invocation into countFile.
func fakeFFmpeg(t *testing.T, accept string) (bin string, countFile string) {
	t.Helper()
	tmp := t.TempDir()
	countFile = filepath.Join(tmp, "count")
	script := `#!/usr/bin/env bash
echo x >> ` + countFile + `
codec=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-c:v" ]; then codec="$arg"; fi
  prev="$arg"
done
if [ "$codec" = "` + accept + `" ]; then exit 0; fi
exit 1
`
	bin = filepath.Join(tmp, "ffmpeg")
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return bin, countFile
}

func probeCount(t *testing.T, countFile string) int {
	t.Helper()
	data, err := os.ReadFile(countFile)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatal(err)
	}
	return len(strings.Fields(string(data)))
}

func TestSelectPicksFirstWorkingBackend(t *testing.T) {
	bin, _ := fakeFFmpeg(t, "h264_qsv")
	s := &Selector{FFmpegBin: bin}

	p := s.Select(context.Background())
	if p.Label != "Intel QuickSync" {
		t.Fatalf("expected QSV profile, got %q", p.Label)
	}
	if !slices.Contains(p.Args, "h264_qsv") {
		t.Fatalf("profile args missing codec: %v", p.Args)
	}
	if !slices.Contains(p.Args, "aac") {
		t.Fatalf("profile args missing audio tail: %v", p.Args)
	}
}

func TestSelectFallsBackToSoftware(t *testing.T) {
	bin, countFile := fakeFFmpeg(t, "nothing-matches")
	s := &Selector{FFmpegBin: bin}

	p := s.Select(context.Background())
	if p.Label != "CPU libx264" {
		t.Fatalf("expected software fallback, got %q", p.Label)
	}
	// Four hardware probes, no probe for the fallback itself.
	if got := probeCount(t, countFile); got != 4 {
		t.Fatalf("expected 4 probe invocations, got %d", got)
	}
}

func TestSelectProbesAtMostOnce(t *testing.T) {
	bin, countFile := fakeFFmpeg(t, "h264_nvenc")
	s := &Selector{FFmpegBin: bin}

	first := s.Select(context.Background())
	after := probeCount(t, countFile)
	for i := 0; i < 5; i++ {
		if got := s.Select(context.Background()); got.Label != first.Label {
			t.Fatalf("profile changed across calls: %q vs %q", got.Label, first.Label)
		}
	}
	if probeCount(t, countFile) != after {
		t.Fatal("probes ran again on a later Select call")
	}
}

func TestSelectSoftwareWithMissingBinary(t *testing.T) {
	s := &Selector{FFmpegBin: filepath.Join(t.TempDir(), "missing-ffmpeg")}
	p := s.Select(context.Background())
	if p.Label != "CPU libx264" {
		t.Fatalf("missing transcoder must still yield the software profile, got %q", p.Label)
	}
}

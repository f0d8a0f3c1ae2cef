package locator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFakeBin(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolvePrefersSeparatePair(t *testing.T) {
	tmp := t.TempDir()
	bin := writeFakeBin(t, tmp, "yt-dlp", `#!/usr/bin/env bash
cat <<'EOF'
{
  "id": "abc123",
  "title": "Some Talk",
  "duration": 1800.5,
  "requested_formats": [
    {"url": "https://cdn.example/video", "vcodec": "avc1.64002a", "acodec": "none"},
    {"url": "https://cdn.example/audio", "vcodec": "none", "acodec": "mp4a.40.2"}
  ]
}
EOF
`)

	r := &YTDLPResolver{Bin: bin}
	desc, err := r.Resolve(context.Background(), "https://example.com/watch?v=abc123")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if desc.SourceID != "abc123" || desc.Duration != 1800.5 {
		t.Fatalf("unexpected descriptor: %+v", desc)
	}

	inputs, separate, err := desc.Inputs()
	if err != nil {
		t.Fatalf("inputs: %v", err)
	}
	if !separate {
		t.Fatal("expected a separate video+audio pair")
	}
	if len(inputs) != 2 || inputs[0].Kind != KindVideo || inputs[1].Kind != KindAudio {
		t.Fatalf("unexpected inputs: %+v", inputs)
	}
	if inputs[0].URL != "https://cdn.example/video" || inputs[1].URL != "https://cdn.example/audio" {
		t.Fatalf("unexpected input URLs: %+v", inputs)
	}
}

func TestResolveFallsBackToMuxedURL(t *testing.T) {
	tmp := t.TempDir()
	bin := writeFakeBin(t, tmp, "yt-dlp", `#!/usr/bin/env bash
cat <<'EOF'
{"id": "mux1", "title": "Muxed", "duration": 120, "url": "https://cdn.example/muxed", "vcodec": "vp9"}
EOF
`)

	r := &YTDLPResolver{Bin: bin}
	desc, err := r.Resolve(context.Background(), "https://example.com/watch?v=mux1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	inputs, separate, err := desc.Inputs()
	if err != nil {
		t.Fatalf("inputs: %v", err)
	}
	if separate {
		t.Fatal("muxed endpoint should not report a separate pair")
	}
	if len(inputs) != 1 || inputs[0].Kind != KindMuxed || inputs[0].URL != "https://cdn.example/muxed" {
		t.Fatalf("unexpected inputs: %+v", inputs)
	}
}

func TestResolveFailsWithoutUsableURL(t *testing.T) {
	tmp := t.TempDir()
	bin := writeFakeBin(t, tmp, "yt-dlp", `#!/usr/bin/env bash
echo '{"id": "bare", "title": "No Streams", "duration": 60}'
`)

	r := &YTDLPResolver{Bin: bin}
	_, err := r.Resolve(context.Background(), "https://example.com/watch?v=bare")
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
}

func TestResolveReportsToolFailure(t *testing.T) {
	tmp := t.TempDir()
	bin := writeFakeBin(t, tmp, "yt-dlp", `#!/usr/bin/env bash
echo "ERROR: Video unavailable" >&2
exit 1
`)

	r := &YTDLPResolver{Bin: bin}
	_, err := r.Resolve(context.Background(), "https://example.com/watch?v=gone")
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
}

func TestResolveFillsDurationFromFFprobe(t *testing.T) {
	tmp := t.TempDir()
	ytdlp := writeFakeBin(t, tmp, "yt-dlp", `#!/usr/bin/env bash
echo '{"id": "nodur", "url": "https://cdn.example/muxed", "vcodec": "avc1"}'
`)
	ffprobe := writeFakeBin(t, tmp, "ffprobe", `#!/usr/bin/env bash
echo "432.10"
`)

	r := &YTDLPResolver{Bin: ytdlp, FFprobeBin: ffprobe}
	desc, err := r.Resolve(context.Background(), "https://example.com/watch?v=nodur")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if desc.Duration != 432.10 {
		t.Fatalf("expected ffprobe duration fallback, got %f", desc.Duration)
	}
}

package clip

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"yt-clipper/internal/model"
)

// Accepted container extensions for the cache probe; earlier entries win.
var acceptedExts = []string{".mkv", ".mp4", ".webm"}

// CanonicalExt is the container every newly produced clip is written to.
const CanonicalExt = ".mkv"

const (
	// Title budget inside generated filenames, keeps paths well under OS limits.
	maxTitleChars = 30

	// Outputs at or below this size are treated as broken partial writes.
	minCachedBytes = 1024
)

// Planner splits clip requests into already-materialized outputs and work to
// be done. The probe makes re-runs idempotent: a populated output directory
// yields zero pending jobs.
type Planner struct {
	OutputDir      string
	MinCachedBytes int64
	Logf           func(format string, args ...any)
}

func (p *Planner) Plan(requests []model.ClipRequest) (cached, pending []model.ClipJob, err error) {
	if strings.TrimSpace(p.OutputDir) == "" {
		return nil, nil, fmt.Errorf("plan clips: output directory is required")
	}
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("plan clips: %w", err)
	}

	for i, req := range requests {
		job := model.ClipJob{
			JobID:   uuid.NewString(),
			Index:   i + 1,
			Request: req,
		}

		base := SafeBaseName(job.Index, req.Title)
		if existing := p.probeExisting(base); existing != "" {
			job.OutputPath = existing
			if err := model.TransitionJobStatus(&job, model.StatusCached, "output_already_on_disk"); err != nil {
				return nil, nil, err
			}
			cached = append(cached, job)
			continue
		}

		job.OutputPath = filepath.Join(p.OutputDir, base+CanonicalExt)
		if err := model.TransitionJobStatus(&job, model.StatusPending, ""); err != nil {
			return nil, nil, err
		}
		pending = append(pending, job)
	}
	return cached, pending, nil
}

// probeExisting returns the first accepted container at the base name that
// looks like a complete output. Probe failures are conservatively treated as
// "not cached" so a flaky filesystem costs a re-encode, never a lost clip.
func (p *Planner) probeExisting(base string) string {
	for _, ext := range acceptedExts {
		path := filepath.Join(p.OutputDir, base+ext)
		info, err := os.Stat(path)
		if err != nil {
			if !os.IsNotExist(err) {
				p.logf("cache probe failed for %s: %v", path, err)
			}
			continue
		}
		if info.Size() > p.minBytes() {
			return path
		}
	}
	return ""
}

// SafeBaseName derives a deterministic, filesystem-safe base filename from a
// 1-based clip index and its title.
func SafeBaseName(index int, title string) string {
	var b strings.Builder
	for _, c := range title {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == ' ', c == '_':
			b.WriteRune(c)
		}
	}
	safe := strings.TrimSpace(b.String())
	if len(safe) > maxTitleChars {
		safe = strings.TrimSpace(safe[:maxTitleChars])
	}
	return fmt.Sprintf("clip %d-%s", index, safe)
}

func (p *Planner) minBytes() int64 {
	if p.MinCachedBytes > 0 {
		return p.MinCachedBytes
	}
	return minCachedBytes
}

func (p *Planner) logf(format string, args ...any) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}

package encoder

import (
	"context"
	"os/exec"
	"strings"
	"sync"
)

// Selector picks the transcode argument profile for the best available
// hardware backend. Probes run at most once per Selector; the result is
// read-only afterwards. Inject one Selector per pipeline instead of relying
// on process-wide state.
type Selector struct {
	FFmpegBin string // defaults to "ffmpeg"
	Logf      func(format string, args ...any)

	once    sync.Once
	profile Profile
}

// Select returns the memoized profile, probing backends in priority order on
// the first call. It never fails: the software fallback needs no probe.
func (s *Selector) Select(ctx context.Context) Profile {
	s.once.Do(func() {
		s.profile = s.probeAll(ctx)
	})
	return s.profile
}

func (s *Selector) probeAll(ctx context.Context) Profile {
	for _, b := range backends {
		if b.codec == "" {
			s.logf("no hardware encoder available, using %s", b.label)
			return buildProfile(b)
		}
		if s.probe(ctx, b.codec) {
			s.logf("hardware encoder detected: %s", b.label)
			return buildProfile(b)
		}
	}
	// Unreachable while the last backend stays probe-free, but the selector
	// must never return an empty profile.
	last := backends[len(backends)-1]
	return buildProfile(last)
}

// probe runs a silent, trivial encode against one codec. Success means the
// backend is usable on this host.
func (s *Selector) probe(ctx context.Context, codec string) bool {
	cmd := exec.CommandContext(ctx, s.bin(),
		"-v", "error",
		"-f", "lavfi",
		"-i", "color=black:s=64x64:d=0.1",
		"-c:v", codec,
		"-f", "null", "-",
	)
	return cmd.Run() == nil
}

func (s *Selector) bin() string {
	if strings.TrimSpace(s.FFmpegBin) != "" {
		return s.FFmpegBin
	}
	return "ffmpeg"
}

func (s *Selector) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

package clip

import (
	"context"
	"errors"
	"strings"

	"yt-clipper/internal/encoder"
	"yt-clipper/internal/ffmpeg"
	"yt-clipper/internal/locator"
	"yt-clipper/internal/model"
)

// expiredLinkMarker is the only signal the transcoder surfaces when a stream
// URL has expired. Substring matching against the diagnostic tail is fragile
// (wording depends on the tool version) but it is the only classifier the
// unstructured output allows.
const expiredLinkMarker = "403 Forbidden"

// DefaultMaxRetries bounds attempts for one job whose failures keep
// classifying as expired links.
const DefaultMaxRetries = 3

func tailIndicatesExpiredLink(tail []string) bool {
	for _, line := range tail {
		if strings.Contains(line, expiredLinkMarker) {
			return true
		}
	}
	return false
}

// RetryCoordinator redrives a clip job when its failure is classified as a
// link expiry: the cached descriptor is invalidated so the next attempt
// resolves fresh stream URLs. Every other failure is fatal for the job.
type RetryCoordinator struct {
	MaxRetries int
	Locator    locator.Resolver
	Extractor  *Extractor
	Logf       func(format string, args ...any)
}

// Run resolves the source and extracts the clip, retrying on link expiry up
// to the attempt bound. It returns the number of attempts made.
func (r *RetryCoordinator) Run(ctx context.Context, source string, req model.ClipRequest, profile encoder.Profile, outputPath string, onProgress func(ffmpeg.ProgressSample)) (int, error) {
	max := r.maxRetries()
	for attempt := 1; ; attempt++ {
		desc, err := r.Locator.Resolve(ctx, source)
		if err != nil {
			return attempt, err
		}

		err = r.Extractor.Extract(ctx, req, desc, profile, outputPath, onProgress)
		if err == nil {
			return attempt, nil
		}

		var rtErr *ffmpeg.RuntimeError
		retryable := errors.As(err, &rtErr) && !rtErr.TimedOut && tailIndicatesExpiredLink(rtErr.Tail)
		if !retryable || attempt >= max {
			return attempt, err
		}

		r.logf("stream link expired for %q (attempt %d/%d), re-resolving", req.Title, attempt, max)
		r.Locator.Invalidate(source)
	}
}

func (r *RetryCoordinator) maxRetries() int {
	if r.MaxRetries > 0 {
		return r.MaxRetries
	}
	return DefaultMaxRetries
}

func (r *RetryCoordinator) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

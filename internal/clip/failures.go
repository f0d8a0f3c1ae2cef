package clip

import (
	"errors"

	"yt-clipper/internal/ffmpeg"
	"yt-clipper/internal/locator"
)

type failureKind int

const (
	failureTranscode failureKind = iota
	failureExpiredLink
	failureTimeout
	failureLaunch
	failureResolution
)

// classifyFailure maps a job error to a stable reason bucket for the manifest.
func classifyFailure(err error) failureKind {
	var resErr *locator.ResolutionError
	if errors.As(err, &resErr) {
		return failureResolution
	}
	var launchErr *ffmpeg.LaunchError
	if errors.As(err, &launchErr) {
		return failureLaunch
	}
	var rtErr *ffmpeg.RuntimeError
	if errors.As(err, &rtErr) {
		if rtErr.TimedOut {
			return failureTimeout
		}
		if tailIndicatesExpiredLink(rtErr.Tail) {
			return failureExpiredLink
		}
	}
	return failureTranscode
}

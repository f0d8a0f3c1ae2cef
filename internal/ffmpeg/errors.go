package ffmpeg

import (
	"fmt"
	"strings"
)

// LaunchError means the transcoder executable could not be started at all.
type LaunchError struct {
	Bin string
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch transcoder %s: %v", e.Bin, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// RuntimeError means the transcoder started but exited non-zero (or was
// killed by a timeout). Tail carries the last captured diagnostic lines; it
// is the only signal available for failure classification.
type RuntimeError struct {
	ExitCode int
	TimedOut bool
	Tail     []string
}

func (e *RuntimeError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("transcoder timed out (exit code %d)", e.ExitCode)
	}
	last := ""
	for i := len(e.Tail) - 1; i >= 0; i-- {
		if strings.TrimSpace(e.Tail[i]) != "" {
			last = strings.TrimSpace(e.Tail[i])
			break
		}
	}
	if last == "" {
		return fmt.Sprintf("transcoder failed with exit code %d", e.ExitCode)
	}
	return fmt.Sprintf("transcoder failed with exit code %d: %s", e.ExitCode, last)
}

func (e *RuntimeError) TailText() string {
	return strings.Join(e.Tail, "\n")
}

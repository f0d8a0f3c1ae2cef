package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"regexp"
	"time"
)

// Command is an ordered token list for the external transcoder.
type Command struct {
	Bin  string
	Args []string
}

// ProgressSample is one progress observation. Within a single run, Elapsed
// and Percent are monotonically non-decreasing and Percent stays in [0,100].
type ProgressSample struct {
	Elapsed float64
	Percent float64
}

type OutcomeState int

const (
	OutcomeSuccess OutcomeState = iota
	OutcomeLaunchFailure
	OutcomeRuntimeFailure
)

// Outcome is the tagged result of one transcoder run, so callers branch on
// structured status instead of error types.
type Outcome struct {
	State     OutcomeState
	ExitCode  int
	TimedOut  bool
	Tail      []string
	LaunchErr error
}

// AsError maps an Outcome onto the failure taxonomy. Success yields nil.
func (o Outcome) AsError(bin string) error {
	switch o.State {
	case OutcomeLaunchFailure:
		return &LaunchError{Bin: bin, Err: o.LaunchErr}
	case OutcomeRuntimeFailure:
		return &RuntimeError{ExitCode: o.ExitCode, TimedOut: o.TimedOut, Tail: o.Tail}
	default:
		return nil
	}
}

var (
	reDuration = regexp.MustCompile(`Duration:\s*(\d+):(\d{2}):(\d{2})\.(\d{2})`)
	reTime     = regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2})\.(\d{2})`)
)

// Monitor drives one transcoder process, parsing its unstructured diagnostic
// stream into progress samples and a bounded failure tail.
type Monitor struct {
	TailLines       int           // diagnostic lines kept for failure reports, default 20
	MinEmitInterval time.Duration // progress coalescing window, default 200ms
}

// Run launches the command and blocks until it exits or ctx is done. The
// diagnostic stream is consumed line by line and never buffered whole. A
// cancelled or expired ctx kills the process and marks the outcome TimedOut.
func (m *Monitor) Run(ctx context.Context, cmd Command, durationHint float64, onProgress func(ProgressSample)) Outcome {
	proc := exec.CommandContext(ctx, cmd.Bin, cmd.Args...)
	proc.Stdout = io.Discard

	stderr, err := proc.StderrPipe()
	if err != nil {
		return Outcome{State: OutcomeLaunchFailure, LaunchErr: err}
	}
	if err := proc.Start(); err != nil {
		return Outcome{State: OutcomeLaunchFailure, LaunchErr: err}
	}

	tail := newLineRing(m.tailLines())
	total := durationHint
	lastElapsed := -1.0
	var lastEmit time.Time

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(splitByNewlineOrCR)
	for scanner.Scan() {
		line := scanner.Text()
		tail.Push(line)

		if total <= 0 {
			if secs, ok := matchTimestamp(reDuration, line); ok {
				total = secs
			}
		}

		elapsed, ok := matchTimestamp(reTime, line)
		if !ok || elapsed <= lastElapsed {
			continue
		}

		percent := 0.0
		if total > 0 {
			percent = elapsed / total * 100
			if percent > 100 {
				percent = 100
			}
		}

		now := time.Now()
		if onProgress != nil && (lastEmit.IsZero() || now.Sub(lastEmit) >= m.minEmitInterval() || percent >= 100) {
			onProgress(ProgressSample{Elapsed: elapsed, Percent: percent})
			lastEmit = now
			lastElapsed = elapsed
		}
	}

	waitErr := proc.Wait()
	if waitErr == nil {
		return Outcome{State: OutcomeSuccess, Tail: tail.Lines()}
	}

	out := Outcome{State: OutcomeRuntimeFailure, ExitCode: -1, Tail: tail.Lines()}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
	}
	if ctx.Err() != nil {
		out.TimedOut = true
	}
	return out
}

func (m *Monitor) tailLines() int {
	if m.TailLines > 0 {
		return m.TailLines
	}
	return 20
}

func (m *Monitor) minEmitInterval() time.Duration {
	if m.MinEmitInterval > 0 {
		return m.MinEmitInterval
	}
	return 200 * time.Millisecond
}

// matchTimestamp extracts an HH:MM:SS.hh timestamp into seconds.
func matchTimestamp(re *regexp.Regexp, line string) (float64, bool) {
	sub := re.FindStringSubmatch(line)
	if sub == nil {
		return 0, false
	}
	h := atoiDigits(sub[1])
	min := atoiDigits(sub[2])
	sec := atoiDigits(sub[3])
	hund := atoiDigits(sub[4])
	return float64(h)*3600 + float64(min)*60 + float64(sec) + float64(hund)/100, true
}

// atoiDigits converts a digits-only string already vetted by the regexp.
func atoiDigits(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// splitByNewlineOrCR treats both LF and the carriage returns the transcoder
// uses for in-place progress lines as line terminators.
func splitByNewlineOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' || data[i] == '\r' {
			if i == 0 {
				return 1, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

type lineRing struct {
	lines []string
	max   int
}

func newLineRing(max int) *lineRing {
	return &lineRing{lines: make([]string, 0, max), max: max}
}

func (r *lineRing) Push(line string) {
	if len(r.lines) == r.max {
		copy(r.lines, r.lines[1:])
		r.lines[len(r.lines)-1] = line
		return
	}
	r.lines = append(r.lines, line)
}

func (r *lineRing) Lines() []string {
	return r.lines
}

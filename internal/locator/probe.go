package locator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ProbeDuration reads the container duration of a local file or stream URL
// via ffprobe, in seconds.
func ProbeDuration(ctx context.Context, ffprobeBin, input string) (float64, error) {
	if strings.TrimSpace(input) == "" {
		return 0, fmt.Errorf("probe duration: input is required")
	}

	cmd := exec.CommandContext(ctx, ffprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		input,
	)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w: %s", input, err, strings.TrimSpace(stderr.String()))
	}

	text := strings.TrimSpace(stdout.String())
	dur, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: unparseable duration %q", input, text)
	}
	return dur, nil
}

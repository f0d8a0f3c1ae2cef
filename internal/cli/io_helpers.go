package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"yt-clipper/internal/model"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stdoutIsTTY() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// readClipRequests loads and validates an external clip manifest, reporting
// per-entry rejections on stderr without failing the batch.
func readClipRequests(path string) ([]model.ClipRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read clip manifest %s: %w", path, err)
	}
	requests, rejected, err := model.ParseClipManifest(data)
	if err != nil {
		return nil, err
	}
	for _, r := range rejected {
		fmt.Fprintf(os.Stderr, "skipping clip %d (%s): %s\n", r.Index+1, r.Title, r.Reason)
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("clip manifest %s has no valid clips", path)
	}
	return requests, nil
}

func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBytesIEC(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for q := n / unit; q >= unit; q /= unit {
		div *= unit
		exp++
	}
	value := float64(n) / float64(div)
	suffix := "KMGTPE"[exp]
	return strconv.FormatFloat(value, 'f', 1, 64) + " " + string(suffix) + "iB"
}

func formatClock(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

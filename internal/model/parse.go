package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RejectedClip records one manifest entry that failed validation. The rest of
// the batch is unaffected.
type RejectedClip struct {
	Index  int    `json:"index"`
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason"`
}

type rawClipList struct {
	Clips []rawClip `json:"clips"`
}

type rawClip struct {
	Title string          `json:"title"`
	Start json.RawMessage `json:"start_time"`
	End   json.RawMessage `json:"end_time"`
}

// ParseClipManifest converts an external clip list into validated requests.
// Entries are checked individually: one malformed timestamp never fails the
// whole batch.
func ParseClipManifest(data []byte) ([]ClipRequest, []RejectedClip, error) {
	var raw rawClipList
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse clip manifest: %w", err)
	}
	if len(raw.Clips) == 0 {
		return nil, nil, fmt.Errorf("clip manifest contains no clips")
	}

	requests := make([]ClipRequest, 0, len(raw.Clips))
	rejected := make([]RejectedClip, 0)
	for i, c := range raw.Clips {
		req, err := c.toRequest()
		if err != nil {
			rejected = append(rejected, RejectedClip{Index: i, Title: strings.TrimSpace(c.Title), Reason: err.Error()})
			continue
		}
		requests = append(requests, req)
	}
	return requests, rejected, nil
}

func (c rawClip) toRequest() (ClipRequest, error) {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return ClipRequest{}, fmt.Errorf("missing title")
	}
	start, err := parseTimestamp(c.Start)
	if err != nil {
		return ClipRequest{}, fmt.Errorf("invalid start_time: %w", err)
	}
	end, err := parseTimestamp(c.End)
	if err != nil {
		return ClipRequest{}, fmt.Errorf("invalid end_time: %w", err)
	}
	if start < 0 {
		return ClipRequest{}, fmt.Errorf("start_time is negative")
	}
	if start >= end {
		return ClipRequest{}, fmt.Errorf("start_time %.2f is not before end_time %.2f", start, end)
	}
	return ClipRequest{Title: title, Start: start, End: end}, nil
}

// parseTimestamp accepts a JSON number of seconds or a clock string in
// "SS", "MM:SS", or "HH:MM:SS" form, each with optional fraction.
func parseTimestamp(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("missing value")
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("expected number or string, got %s", strings.TrimSpace(string(raw)))
	}
	return parseClockString(s)
}

func parseClockString(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed timestamp %q", s)
	}

	total := 0.0
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("malformed timestamp %q", s)
		}
		total = total*60 + v
	}
	return total, nil
}

package model

// ClipRequest is a validated time window inside the source media.
type ClipRequest struct {
	Title string  `json:"title"`
	Start float64 `json:"start_sec"`
	End   float64 `json:"end_sec"`
}

func (r ClipRequest) Duration() float64 {
	return r.End - r.Start
}

// ClipJob binds a request to an output path and tracks its lifecycle.
type ClipJob struct {
	JobID         string      `json:"job_id"`
	Index         int         `json:"index"`
	Request       ClipRequest `json:"request"`
	OutputPath    string      `json:"output_path"`
	Status        string      `json:"status"`
	Reason        string      `json:"reason,omitempty"`
	Attempts      int         `json:"attempts,omitempty"`
	LastError     string      `json:"last_error,omitempty"`
	LastAttemptAt string      `json:"last_attempt_at,omitempty"`
	CompletedAt   string      `json:"completed_at,omitempty"`
}

// ClipManifest is the canonical per-run job state file.
type ClipManifest struct {
	SchemaVersion int       `json:"schema_version"`
	GeneratedAt   string    `json:"generated_at"`
	RunID         string    `json:"run_id"`
	SourceURL     string    `json:"source_url"`
	SourceID      string    `json:"source_id,omitempty"`
	SourceTitle   string    `json:"source_title,omitempty"`
	Total         int       `json:"total"`
	Pending       int       `json:"pending"`
	Running       int       `json:"running"`
	Cached        int       `json:"cached"`
	Done          int       `json:"done"`
	Failed        int       `json:"failed"`
	Jobs          []ClipJob `json:"jobs"`
}

func RecomputeCounts(mf *ClipManifest) {
	pending := 0
	running := 0
	cached := 0
	done := 0
	failed := 0

	for _, j := range mf.Jobs {
		switch j.Status {
		case StatusPending:
			pending++
		case StatusRunning:
			running++
		case StatusCached:
			cached++
		case StatusDone:
			done++
		case StatusFailed:
			failed++
		}
	}

	mf.Total = len(mf.Jobs)
	mf.Pending = pending
	mf.Running = running
	mf.Cached = cached
	mf.Done = done
	mf.Failed = failed
}

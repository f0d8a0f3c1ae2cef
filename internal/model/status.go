package model

import "fmt"

const (
	StatusPending = "pending"
	StatusCached  = "cached"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

var allowedTransitions = map[string]map[string]bool{
	"": {
		StatusPending: true,
		StatusCached:  true,
	},
	StatusPending: {
		StatusPending: true,
		StatusCached:  true,
		StatusRunning: true,
		StatusFailed:  true,
	},
	StatusCached: {
		StatusCached:  true,
		StatusPending: true, // cached output removed from disk, needs rework
	},
	StatusRunning: {
		StatusRunning: true,
		StatusDone:    true,
		StatusFailed:  true,
	},
	StatusDone: {
		StatusDone:    true,
		StatusPending: true, // local output missing on a later run
	},
	StatusFailed: {
		StatusFailed:  true,
		StatusPending: true, // explicit re-plan on a later run
	},
}

func IsKnownStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}

func CanTransition(from, to string) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

func TransitionJobStatus(job *ClipJob, toStatus string, reason string) error {
	from := job.Status
	if !CanTransition(from, toStatus) {
		return fmt.Errorf("invalid job status transition: %q -> %q (job_id=%s clip=%q)", from, toStatus, job.JobID, job.Request.Title)
	}
	job.Status = toStatus
	job.Reason = reason
	return nil
}

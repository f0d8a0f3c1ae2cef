package clip

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"yt-clipper/internal/encoder"
	"yt-clipper/internal/ffmpeg"
	"yt-clipper/internal/locator"
	"yt-clipper/internal/model"
	"yt-clipper/internal/runstore"
)

// Event is one pipeline observation for a progress surface.
type Event struct {
	JobIndex int
	Total    int
	Title    string
	Phase    string // starting | transcoding | retrying | done | failed | cached
	Sample   ffmpeg.ProgressSample
	Message  string
}

type Options struct {
	SourceURL  string
	OutputDir  string
	Requests   []model.ClipRequest
	Workers    int
	MaxRetries int
	JobTimeout time.Duration
	SeekBuffer float64
	EndPadding float64
	FFmpegBin  string

	Locator  locator.Resolver
	Selector *encoder.Selector

	OnEvent func(Event)
	Logf    func(format string, args ...any)
}

type Report struct {
	RunID        string
	ManifestPath string
	Total        int
	Cached       int
	Done         int
	Failed       int
	Jobs         []model.ClipJob // original clip order
}

// Run drives the whole extraction pipeline: plan, select the encoder profile
// once, then resolve/extract every pending job with expiry retries. A single
// job failure never aborts the run; the report accumulates both outcomes.
func Run(ctx context.Context, opts Options) (Report, error) {
	if strings.TrimSpace(opts.SourceURL) == "" {
		return Report{}, fmt.Errorf("source URL is required")
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return Report{}, fmt.Errorf("output directory is required")
	}
	if len(opts.Requests) == 0 {
		return Report{}, fmt.Errorf("no clip requests to process")
	}
	if opts.Locator == nil {
		return Report{}, fmt.Errorf("stream locator is required")
	}
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	lock, err := runstore.AcquireDirLock(opts.OutputDir)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		_ = lock.Release()
	}()

	planner := &Planner{OutputDir: opts.OutputDir, Logf: logf}
	cached, pending, err := planner.Plan(opts.Requests)
	if err != nil {
		return Report{}, err
	}
	for _, job := range cached {
		logf("[%d/%d] cached %s", job.Index, len(opts.Requests), filepath.Base(job.OutputPath))
		emit(opts.OnEvent, Event{JobIndex: job.Index, Total: len(opts.Requests), Title: job.Request.Title, Phase: "cached"})
	}

	mf := model.ClipManifest{
		SchemaVersion: 1,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		RunID:         uuid.NewString(),
		SourceURL:     opts.SourceURL,
		Jobs:          mergeByIndex(cached, pending),
	}
	model.RecomputeCounts(&mf)
	manifestPath := filepath.Join(opts.OutputDir, "clips.json")
	if err := runstore.WriteJSON(manifestPath, mf); err != nil {
		return Report{}, err
	}

	selector := opts.Selector
	if selector == nil {
		selector = &encoder.Selector{FFmpegBin: opts.FFmpegBin, Logf: logf}
	}
	// Profile selection happens once, before any job dispatch; the result is
	// immutable afterwards.
	profile := selector.Select(ctx)

	logsDir := filepath.Join(opts.OutputDir, "logs")
	if err := runstore.Mkdir(logsDir); err != nil {
		return Report{}, err
	}

	extractor := &Extractor{
		FFmpegBin:  opts.FFmpegBin,
		SeekBuffer: opts.SeekBuffer,
		EndPadding: opts.EndPadding,
	}
	retrier := &RetryCoordinator{
		MaxRetries: opts.MaxRetries,
		Locator:    opts.Locator,
		Extractor:  extractor,
		Logf:       logf,
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	var stateMu sync.Mutex
	persist := func() error {
		model.RecomputeCounts(&mf)
		return runstore.WriteJSON(manifestPath, mf)
	}

	jobCh := make(chan int)
	var wg sync.WaitGroup

	total := mf.Total

	workerFn := func() {
		defer wg.Done()
		for i := range jobCh {
			stateMu.Lock()
			job := &mf.Jobs[i]
			if job.Status != model.StatusPending {
				stateMu.Unlock()
				continue
			}
			if err := model.TransitionJobStatus(job, model.StatusRunning, ""); err != nil {
				logf("job %d: %v", job.Index, err)
				stateMu.Unlock()
				continue
			}
			job.LastAttemptAt = time.Now().UTC().Format(time.RFC3339)
			if err := persist(); err != nil {
				logf("persist manifest: %v", err)
			}
			index, title, outputPath := job.Index, job.Request.Title, job.OutputPath
			req := job.Request
			stateMu.Unlock()

			logf("[%d/%d] clip %s", index, total, title)
			emit(opts.OnEvent, Event{JobIndex: index, Total: total, Title: title, Phase: "starting"})

			jobCtx := ctx
			cancel := func() {}
			if opts.JobTimeout > 0 {
				jobCtx, cancel = context.WithTimeout(ctx, opts.JobTimeout)
			}
			attempts, jobErr := retrier.Run(jobCtx, opts.SourceURL, req, profile, outputPath, func(s ffmpeg.ProgressSample) {
				emit(opts.OnEvent, Event{JobIndex: index, Total: total, Title: title, Phase: "transcoding", Sample: s})
			})
			cancel()

			stateMu.Lock()
			job.Attempts += attempts
			if jobErr == nil {
				if err := model.TransitionJobStatus(job, model.StatusDone, ""); err != nil {
					logf("job %d: %v", index, err)
				}
				job.LastError = ""
				job.CompletedAt = time.Now().UTC().Format(time.RFC3339)
			} else {
				if err := model.TransitionJobStatus(job, model.StatusFailed, failureReason(jobErr)); err != nil {
					logf("job %d: %v", index, err)
				}
				job.LastError = truncate(jobErr.Error(), 1200)
				writeFailureLog(logsDir, index, title, jobErr, logf)
			}
			if err := persist(); err != nil {
				logf("persist manifest: %v", err)
			}
			stateMu.Unlock()

			if jobErr == nil {
				logf("[%d/%d] done  %s", index, total, title)
				emit(opts.OnEvent, Event{JobIndex: index, Total: total, Title: title, Phase: "done"})
			} else {
				logf("[%d/%d] fail  %s: %v", index, total, title, jobErr)
				emit(opts.OnEvent, Event{JobIndex: index, Total: total, Title: title, Phase: "failed", Message: jobErr.Error()})
			}
		}
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go workerFn()
	}
	for i := range mf.Jobs {
		if mf.Jobs[i].Status != model.StatusPending {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		jobCh <- i
	}
	close(jobCh)
	wg.Wait()

	stateMu.Lock()
	defer stateMu.Unlock()
	if err := persist(); err != nil {
		return Report{}, err
	}

	report := Report{
		RunID:        mf.RunID,
		ManifestPath: manifestPath,
		Total:        mf.Total,
		Cached:       mf.Cached,
		Done:         mf.Done,
		Failed:       mf.Failed,
		Jobs:         append([]model.ClipJob(nil), mf.Jobs...),
	}
	return report, nil
}

func mergeByIndex(cached, pending []model.ClipJob) []model.ClipJob {
	jobs := make([]model.ClipJob, 0, len(cached)+len(pending))
	jobs = append(jobs, cached...)
	jobs = append(jobs, pending...)
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].Index < jobs[b].Index })
	return jobs
}

func failureReason(err error) string {
	switch classifyFailure(err) {
	case failureExpiredLink:
		return "expired_link"
	case failureTimeout:
		return "timeout"
	case failureLaunch:
		return "transcoder_unavailable"
	case failureResolution:
		return "stream_resolution"
	default:
		return "transcode_error"
	}
}

func writeFailureLog(logsDir string, index int, title string, jobErr error, logf func(string, ...any)) {
	var rtErr *ffmpeg.RuntimeError
	content := jobErr.Error() + "\n"
	if errors.As(jobErr, &rtErr) && len(rtErr.Tail) > 0 {
		content += "\ndiagnostic tail:\n" + rtErr.TailText() + "\n"
	}
	path := filepath.Join(logsDir, fmt.Sprintf("%s.log", SafeBaseName(index, title)))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		logf("write failure log %s: %v", path, err)
	}
}

func emit(onEvent func(Event), ev Event) {
	if onEvent != nil {
		onEvent(ev)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

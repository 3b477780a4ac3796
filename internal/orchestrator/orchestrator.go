// Package orchestrator plans and drives a batch translation run: one worker
// walks the job list in order, reports progress after every file and stops
// scheduling as soon as cancellation is requested.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/valpere/doctran/internal"
	"github.com/valpere/doctran/internal/document"
	"github.com/valpere/doctran/internal/i18n"
	"github.com/valpere/doctran/internal/runstate"
)

var (
	ErrNoTargetLang  = errors.New("destination language is not set")
	ErrNoOutputDir   = errors.New("output folder is not set")
	ErrInvalidInput  = errors.New("input path is not a readable file or folder")
	ErrNoFiles       = errors.New("no supported files found")
	ErrRunInProgress = errors.New("a run is already in progress")
)

// Status is where a run is in its lifecycle.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusCompleted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return string(internal.RunCompleted)
	case StatusCancelled:
		return string(internal.RunCancelled)
	default:
		return "idle"
	}
}

// ReportSink presents a run to the user.
type ReportSink interface {
	// Progress receives 100*k/n after the k-th of n jobs.
	Progress(percent float64)
	// Notify announces a completed run. It is not called on cancellation.
	Notify(title, message string)
	// Report lists the files that failed, in run order, possibly none. It
	// is not called on cancellation.
	Report(failed []string)
}

// FileProcessor translates one job. fileproc.Processor implements it.
type FileProcessor interface {
	Process(ctx context.Context, job internal.TranslationJob) internal.FileOutcome
}

// Recorder persists finished runs. store.Store implements it.
type Recorder interface {
	SaveRun(ctx context.Context, rec internal.RunRecord) error
}

// Request is what the user asked for.
type Request struct {
	InputPath  string
	OutputDir  string
	SourceLang string
	TargetLang string
}

type Config struct {
	// Fallback, when set, is memoized at the start of every run as if the
	// user had picked it with "use for all".
	Fallback string
	// Service names the provider in run records.
	Service string
}

// Result summarises a finished run.
type Result struct {
	RunID       string
	Status      Status
	Total       int
	Processed   int
	FailedFiles []string
	StartedAt   time.Time
	FinishedAt  time.Time
}

type Orchestrator struct {
	proc     FileProcessor
	state    *runstate.State
	sink     ReportSink
	recorder Recorder
	config   Config
	logger   *slog.Logger

	mu     sync.Mutex
	status Status
}

func New(proc FileProcessor, state *runstate.State, sink ReportSink, config Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		proc:   proc,
		state:  state,
		sink:   sink,
		config: config,
		logger: logger,
	}
}

// SetRecorder enables run history.
func (o *Orchestrator) SetRecorder(r Recorder) {
	o.recorder = r
}

// Status returns the state of the current or last run.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Cancel asks the running batch to stop before its next job. The job in
// flight finishes. It reports whether this call requested the stop.
func (o *Orchestrator) Cancel() bool {
	return o.state.Cancel()
}

// Plan validates req and lists the jobs to run. Settings are checked before
// the filesystem is touched, and the output folder is created only once
// the plan is known to be runnable.
func Plan(req Request) ([]internal.TranslationJob, error) {
	target := strings.ToLower(strings.TrimSpace(req.TargetLang))
	if target == "" {
		return nil, ErrNoTargetLang
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return nil, ErrNoOutputDir
	}
	if strings.TrimSpace(req.InputPath) == "" {
		return nil, ErrInvalidInput
	}

	source := strings.ToLower(strings.TrimSpace(req.SourceLang))
	if source == "" {
		source = internal.AutoLanguage
	}

	input, err := filepath.Abs(req.InputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// A single file is mirrored relative to its own folder.
	root := input
	files := []string{input}
	if info.IsDir() {
		if files, err = document.Discover(input); err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w in %s", ErrNoFiles, input)
		}
	} else {
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, input)
		}
		root = filepath.Dir(input)
	}

	jobs := make([]internal.TranslationJob, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			return nil, fmt.Errorf("failed to relate %s to %s: %w", f, root, err)
		}
		jobs = append(jobs, internal.TranslationJob{
			SourcePath:   f,
			RelativePath: rel,
			SourceLang:   source,
			TargetLang:   target,
		})
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output folder: %w", err)
	}
	return jobs, nil
}

// Run processes jobs in order. Cancelling ctx requests cancellation the same
// way Cancel does; ctx is also handed to the processor, so it bounds the
// job in flight.
func (o *Orchestrator) Run(ctx context.Context, req Request, jobs []internal.TranslationJob) (*Result, error) {
	o.mu.Lock()
	if o.status == StatusRunning {
		o.mu.Unlock()
		return nil, ErrRunInProgress
	}
	o.status = StatusRunning
	o.mu.Unlock()

	o.state.Reset()
	if o.config.Fallback != "" {
		o.state.Memoize(o.config.Fallback)
	}
	stop := context.AfterFunc(ctx, func() { o.state.Cancel() })
	defer stop()

	result := &Result{
		RunID:     uuid.NewString(),
		Total:     len(jobs),
		StartedAt: time.Now(),
	}
	logger := o.logger.With("run_id", result.RunID)
	logger.Info("run started", "files", len(jobs))

	for k, job := range jobs {
		if ctx.Err() != nil {
			o.state.Cancel()
		}
		if o.state.Cancelled() {
			logger.Info("run cancelled", "processed", k, "total", len(jobs))
			break
		}

		outcome := o.proc.Process(ctx, job)
		interrupted := ctx.Err() != nil || errors.Is(outcome.Err, context.Canceled)
		if interrupted {
			o.state.Cancel()
		}
		if !outcome.Success {
			if interrupted {
				// Its attempts did not run out: abandoned, not failed.
				logger.Info("file abandoned", "file", job.SourcePath, "attempts", outcome.Attempts)
				break
			}
			o.state.RecordFailure(job.SourcePath)
			logger.Warn("file failed", "file", job.SourcePath, "attempts", outcome.Attempts, "error", outcome.Err)
		}
		result.Processed = k + 1
		if o.state.Cancelled() {
			// Cancelled while this job ran; the sink hears nothing more.
			logger.Info("run cancelled", "processed", k+1, "total", len(jobs))
			break
		}
		o.sink.Progress(100 * float64(k+1) / float64(len(jobs)))
	}

	result.FinishedAt = time.Now()
	result.FailedFiles = o.state.FailedFiles()
	result.Status = StatusCompleted
	if o.state.Cancelled() {
		result.Status = StatusCancelled
	}

	if result.Status == StatusCompleted {
		o.sink.Notify(i18n.T("Translation complete"), completionMessage(result))
		o.sink.Report(result.FailedFiles)
	}
	logger.Info("run finished", "status", result.Status.String(), "processed", result.Processed, "failed", len(result.FailedFiles))

	o.record(ctx, req, result, logger)

	o.mu.Lock()
	o.status = result.Status
	o.mu.Unlock()
	return result, nil
}

func (o *Orchestrator) record(ctx context.Context, req Request, result *Result, logger *slog.Logger) {
	if o.recorder == nil {
		return
	}
	rec := internal.RunRecord{
		ID:          result.RunID,
		InputPath:   req.InputPath,
		OutputDir:   req.OutputDir,
		SourceLang:  req.SourceLang,
		TargetLang:  req.TargetLang,
		Service:     o.config.Service,
		Status:      internal.RunStatus(result.Status.String()),
		Total:       result.Total,
		Processed:   result.Processed,
		FailedFiles: result.FailedFiles,
		StartedAt:   result.StartedAt,
		FinishedAt:  result.FinishedAt,
	}
	// A cancelled ctx must not lose the record of the cancelled run.
	if err := o.recorder.SaveRun(context.WithoutCancel(ctx), rec); err != nil {
		logger.Warn("failed to record run", "error", err)
	}
}

func completionMessage(r *Result) string {
	failed := len(r.FailedFiles)
	switch {
	case r.Total == 1 && failed == 0:
		return i18n.T("File translated successfully.")
	case r.Total == 1:
		return i18n.T("The file could not be translated.")
	case failed == 0:
		return i18n.T("All files have been translated successfully.")
	}
	return i18n.N("%d of %d files translated, %d failed.", "%d of %d files translated, %d failed.", failed, r.Total-failed, r.Total, failed)
}

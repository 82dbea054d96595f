package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/guidexml/internal/metrics"
	"github.com/dgallion1/guidexml/internal/parser"
)

// Worker processes a single document job.
type Worker struct {
	conv     *Converter
	jobs     *JobStore
	recorder metrics.Recorder
	log      *slog.Logger
}

func NewWorker(conv *Converter, jobs *JobStore, rec metrics.Recorder, log *slog.Logger) *Worker {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Worker{conv: conv, jobs: jobs, recorder: rec, log: log}
}

// Process runs parse and translate for a job. Failures are final: a
// document that does not translate will not translate on a second try.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()
	format := parser.Format(job.Filename)

	fail := func(phase string, err error) {
		log.Error("job failed", "phase", phase, "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, phase)
		w.recorder.ObserveTranslation(format, time.Since(start), metrics.OutcomeFailed)
	}

	if err := ctx.Err(); err != nil {
		fail("queued", err)
		return
	}

	// Same bytes, name and title as a job already done: reuse its guide.
	if w.jobs != nil {
		if guide, progress, ok := w.jobs.FindCompleted(job); ok {
			log.Info("reusing completed result", "content_hash", job.ContentHash)
			job.SetResult(guide, progress.Records, progress.Sections, "cached")
			return
		}
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	tree, err := w.conv.Parse(job.Filename, job.FileData())
	if err != nil {
		fail("parsing", err)
		return
	}

	// Phase 2: Translate
	job.SetStatus(StatusTranslating, "translating")
	res, err := w.conv.Render(tree, job.Filename, job.Title)
	if err != nil {
		fail("translating", err)
		return
	}

	job.SetResult(res.Guide, res.Records, res.Sections, "done")
	w.recorder.ObserveTranslation(format, time.Since(start), metrics.OutcomeSuccess)
	log.Info("job completed",
		"records", res.Records,
		"sections", res.Sections,
		"bytes", len(res.Guide),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgallion1/docaffix/internal/affix"
	"github.com/dgallion1/docaffix/internal/config"
	"github.com/dgallion1/docaffix/internal/page"
)

// Options carries everything a worker needs to process pages.
type Options struct {
	Page               page.Options
	Affix              affix.Options
	MaxConcurrentPages int
}

// OptionsFromConfig maps the loaded configuration onto worker options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Page: page.Options{
			PlaceholderID:   cfg.PlaceholderID,
			ConceptualClass: cfg.ConceptualClass,
			XrefClass:       cfg.XrefClass,
		},
		Affix: affix.Options{
			Classes: cfg.ListClasses,
			Scope:   cfg.ScopeClass,
		},
		MaxConcurrentPages: cfg.MaxConcurrentPages,
	}
}

// Worker processes batch jobs.
type Worker struct {
	opts  Options
	stats *PageStats
	log   *slog.Logger
}

func NewWorker(opts Options, stats *PageStats, log *slog.Logger) *Worker {
	if opts.MaxConcurrentPages <= 0 {
		opts.MaxConcurrentPages = 1
	}
	return &Worker{
		opts:  opts,
		stats: stats,
		log:   log,
	}
}

// Process discovers the job's pages and splices an affix into each one.
// Pages that cannot be read, parsed or written are logged and skipped; the
// rest of the batch carries on.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "root", job.Root)

	job.SetStatus(StatusDiscovering, "discovering")
	pages, err := Discover(job.Root)
	if err != nil {
		log.Error("discovery failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "discovering")
		return
	}
	job.SetTotalPages(len(pages))
	log.Info("discovered pages", "pages", len(pages))

	if len(pages) == 0 {
		log.Warn("no eligible pages")
		job.SetStatus(StatusCompleted, "done")
		return
	}

	w.processPages(ctx, job, pages, log)
}

// processPages runs ProcessFile over pages with bounded concurrency and sets
// the job's final status.
func (w *Worker) processPages(ctx context.Context, job *Job, pages []string, log *slog.Logger) {
	job.SetStatus(StatusProcessing, "processing")
	type pageResult struct {
		path    string
		outcome Outcome
		err     error
	}
	results := make(chan pageResult, len(pages))
	sem := make(chan struct{}, w.opts.MaxConcurrentPages)

	dispatched := 0
dispatch:
	for _, path := range pages {
		if ctx.Err() != nil {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break dispatch
		}
		dispatched++
		go func(path string) {
			defer func() { <-sem }()
			outcome, err := w.ProcessFile(path)
			results <- pageResult{path: path, outcome: outcome, err: err}
		}(path)
	}

	failed := 0
	for range dispatched {
		r := <-results
		job.RecordPage(r.outcome)
		if r.err != nil {
			log.Warn("page skipped", "path", r.path, "error", r.err)
			job.AddError(fmt.Sprintf("%s: %s", r.path, r.err))
			failed++
		}
	}

	snap := job.Snapshot()
	log.Info("processing complete",
		"updated", snap.Progress.PagesUpdated,
		"emptied", snap.Progress.PagesEmptied,
		"skipped", snap.Progress.PagesSkipped,
		"failed", failed,
	)

	switch {
	case dispatched < len(pages):
		job.AddError(fmt.Sprintf("canceled after %d of %d pages", dispatched, len(pages)))
		job.SetStatus(StatusFailed, "canceled")
	case failed == len(pages):
		job.SetStatus(StatusFailed, "processing")
	case failed > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}

// ProcessFile splices an affix into a single page on disk. The file is
// rewritten only when it has a placeholder.
func (w *Worker) ProcessFile(path string) (Outcome, error) {
	start := time.Now()
	outcome, res, err := w.processFile(path)
	if w.stats != nil {
		w.stats.Record(time.Since(start), outcome)
	}
	if err == nil {
		w.log.Debug("page processed", "path", path, "outcome", outcome,
			"headings", res.Headings, "items", res.Items, "conceptual", res.Conceptual)
	}
	return outcome, err
}

func (w *Worker) processFile(path string) (Outcome, affix.Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return OutcomeFailed, affix.Result{}, fmt.Errorf("stat: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return OutcomeFailed, affix.Result{}, fmt.Errorf("read: %w", err)
	}

	p, err := page.Parse(bytes.NewReader(data))
	if err != nil {
		return OutcomeFailed, affix.Result{}, err
	}

	res := affix.Apply(p, w.opts.Page, w.opts.Affix)
	if !res.Placeholder {
		return OutcomeSkipped, res, nil
	}

	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return OutcomeFailed, res, err
	}
	if err := os.WriteFile(path, buf.Bytes(), info.Mode().Perm()); err != nil {
		return OutcomeFailed, res, fmt.Errorf("write: %w", err)
	}

	if res.Empty {
		return OutcomeEmptied, res, nil
	}
	return OutcomeUpdated, res, nil
}

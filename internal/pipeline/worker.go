package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docweave/internal/analyzer"
	"docweave/internal/chunker"
	"docweave/internal/continuity"
	"docweave/internal/generate"
	"docweave/internal/merger"
)

// Worker runs the full formatting pipeline for one job:
// analyzing → chunking → processing → merging → complete.
type Worker struct {
	client *generate.Client
	log    *slog.Logger
	opts   ProcessOptions
}

func NewWorker(client *generate.Client, log *slog.Logger, opts ProcessOptions) *Worker {
	return &Worker{
		client: client,
		log:    log,
		opts:   opts,
	}
}

// Process drives a job end to end. The final document is always produced
// unless the input itself is unusable; per-unit generation failures only
// lower the job's success ratio.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	source := job.SourceText()
	if strings.TrimSpace(source) == "" {
		log.Error("empty source text")
		job.AddError("no source text to process")
		job.SetStatus(StatusFailed, string(PhaseAnalyzing))
		return
	}

	// Phase 1: infer document structure. Never fails; degrades to pages.
	job.SetStatus(StatusAnalyzing, string(PhaseAnalyzing))
	structure := analyzer.Analyze(source)
	log.Info("analyzed document",
		"headings", len(structure.Headings),
		"sections", len(structure.Sections),
		"pages", len(structure.PageBreaks),
	)

	// Phase 2: budgeted chunk construction with coverage check.
	job.SetStatus(StatusChunking, string(PhaseChunking))
	result := chunker.BuildChunks(source, structure, job.MaxTokens)
	job.SetTotalUnits(result.TotalChunks)
	log.Info("chunked document",
		"chunks", result.TotalChunks,
		"content_length", result.TotalContentLength,
		"source_length", len(source),
	)
	if result.TotalChunks == 0 {
		job.AddError("chunking produced no units")
		job.SetStatus(StatusFailed, string(PhaseChunking))
		return
	}

	// Phase 3: one generation call per unit, in document order.
	job.SetStatus(StatusProcessing, string(PhaseProcessing))
	opts := w.opts
	opts.Log = log
	processed, _ := ProcessSequential(ctx, result.Chunks, continuity.State{}, w.format, opts)
	for _, p := range processed {
		job.RecordUnit(p.Success)
		if p.Err != "" {
			job.AddError(fmt.Sprintf("%s: %s", p.ID, p.Err))
		}
	}

	if len(processed) == 0 {
		job.AddError("run cancelled before any unit was processed")
		job.SetStatus(StatusFailed, string(PhaseProcessing))
		return
	}

	// Phase 4: deterministic reassembly. Partial runs still merge.
	job.SetStatus(StatusMerging, string(PhaseMerging))
	fragments := make([]merger.Fragment, 0, len(processed))
	for _, p := range processed {
		fragments = append(fragments, merger.Fragment{
			ID:      p.ID,
			Content: p.ProcessedContent,
			Success: p.Success,
		})
	}
	job.SetResult(merger.Merge(fragments))

	succeeded := 0
	for _, p := range processed {
		if p.Success {
			succeeded++
		}
	}
	log.Info("merge complete", "units", len(processed), "succeeded", succeeded)

	switch {
	case len(processed) < result.TotalChunks || succeeded < len(processed):
		job.SetStatus(StatusPartial, string(PhaseComplete))
	default:
		job.SetStatus(StatusCompleted, string(PhaseComplete))
	}
}

func (w *Worker) format(ctx context.Context, systemContext, unitText string) (string, error) {
	return w.client.Format(ctx, systemContext, unitText)
}

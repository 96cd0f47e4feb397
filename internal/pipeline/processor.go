package pipeline

import (
	"context"
	"log/slog"
	"time"

	"docweave/internal/chunker"
	"docweave/internal/continuity"
	"docweave/internal/generate"
)

// ProcessedChunk is the outcome of one unit. Success=false still carries
// non-empty fallback content: every input unit yields non-empty output.
type ProcessedChunk struct {
	ID               string
	ProcessedContent string
	OriginalChunk    chunker.ContentChunk
	Success          bool
	Err              string
}

// Caller is the external generation call for one unit.
type Caller func(ctx context.Context, systemContext, unitText string) (string, error)

// Phase names the pipeline stage a progress event belongs to.
type Phase string

const (
	PhaseAnalyzing  Phase = "analyzing"
	PhaseChunking   Phase = "chunking"
	PhaseProcessing Phase = "processing"
	PhaseMerging    Phase = "merging"
	PhaseComplete   Phase = "complete"
)

// ProgressEvent is emitted at phase boundaries and per processed unit.
type ProgressEvent struct {
	CurrentUnit int
	TotalUnits  int
	Phase       Phase
	Message     string
}

// ProcessOptions tunes the sequential run.
type ProcessOptions struct {
	// UnitDelay is the fixed pause between external calls, to respect rate
	// limits. Not a correctness mechanism.
	UnitDelay  time.Duration
	OnProgress func(ProgressEvent)
	Log        *slog.Logger
}

// ProcessSequential drives chunks through the generation call strictly in
// order, threading continuation state from each unit's output into the next
// unit's request. Per-unit failures are converted to deterministic fallback
// content and never abort the chain. Cancellation is honored between units
// only; already-processed units are returned so partial work still merges.
func ProcessSequential(ctx context.Context, chunks []chunker.ContentChunk, initial continuity.State, call Caller, opts ProcessOptions) ([]ProcessedChunk, continuity.State) {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	state := initial
	results := make([]ProcessedChunk, 0, len(chunks))

	for i, chunk := range chunks {
		if ctx.Err() != nil {
			log.Warn("run cancelled between units", "processed", len(results), "total", len(chunks))
			break
		}

		opts.emit(ProgressEvent{
			CurrentUnit: i + 1,
			TotalUnits:  len(chunks),
			Phase:       PhaseProcessing,
			Message:     "formatting " + chunk.ID,
		})

		sysContext := continuity.RenderContext(state, i, len(chunks))
		content, err := callWithRetry(ctx, call, sysContext, chunk.Content, log)

		result := ProcessedChunk{
			ID:            chunk.ID,
			OriginalChunk: chunk,
			Success:       err == nil,
		}
		if err != nil {
			log.Error("generation failed, using fallback", "chunk", chunk.ID, "error", err)
			result.Err = err.Error()
			content = generate.Fallback(chunk.Content)
		}
		result.ProcessedContent = content
		results = append(results, result)

		// State advances from whatever content exists, processed or
		// fallback, so failures do not break continuity downstream.
		state = continuity.Advance(state, content)

		if opts.UnitDelay > 0 && i+1 < len(chunks) {
			select {
			case <-time.After(opts.UnitDelay):
			case <-ctx.Done():
			}
		}
	}
	return results, state
}

// callWithRetry runs the generation call with bounded retries on transient
// failures. Returns the last error when all attempts fail.
func callWithRetry(ctx context.Context, call Caller, sysContext, unitText string, log *slog.Logger) (string, error) {
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		content, err := call(ctx, sysContext, unitText)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
		log.Warn("retryable generation error", "attempt", attempt, "error", err)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

func (o ProcessOptions) emit(ev ProgressEvent) {
	if o.OnProgress != nil {
		o.OnProgress(ev)
	}
}

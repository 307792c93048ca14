package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/harvester/internal/core/domain"
	"github.com/custodia-labs/harvester/internal/core/ports/driven"
	"github.com/custodia-labs/harvester/internal/core/ports/driving"
	"github.com/custodia-labs/harvester/internal/logger"
)

// MIME types handed to the text extractor.
const (
	MIMETypeHTML = "text/html"
)

// PipelineDeps are the collaborators a HarvestPipeline drives.
type PipelineDeps struct {
	Sources   driven.SourceFactory
	Filters   driven.FilterBuilder
	Extractor driven.TextExtractor
	Evaluator driven.FieldEvaluator
	Sink      driven.DocumentSink
	Failures  driven.FailureRecorder
	Stats     driven.StatsRecorder
}

// PipelineOptions tune a HarvestPipeline.
type PipelineOptions struct {
	// ShutdownTimeout is the grace period for in-flight items once the
	// listing is exhausted. Zero means domain.DefaultShutdownTimeout.
	ShutdownTimeout time.Duration
}

// Ensure HarvestPipeline implements the interface.
var _ driving.Harvester = (*HarvestPipeline)(nil)

// HarvestPipeline drives one harvest run: list items, process each on a
// bounded worker pool, dispatch documents, record failures.
type HarvestPipeline struct {
	deps PipelineDeps
	opts PipelineOptions
}

// NewHarvestPipeline creates a pipeline.
func NewHarvestPipeline(deps PipelineDeps, opts PipelineOptions) *HarvestPipeline {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = domain.DefaultShutdownTimeout
	}
	return &HarvestPipeline{deps: deps, opts: opts}
}

// runState is read-only for the duration of a run, apart from the counters.
type runState struct {
	run      domain.Run
	settings *domain.RunSettings
	source   driven.ItemSource
	filter   driven.URLFilter
	fields   []string

	submitted atomic.Int64
	finished  atomic.Int64
	discarded atomic.Int64
	failed    atomic.Int64
}

// Run harvests run.Source. Configuration errors abort before any network
// call. Item failures are recorded and do not stop the run; a failing
// listing stops submission and is returned once in-flight items drain.
func (h *HarvestPipeline) Run(ctx context.Context, run domain.Run) (*domain.RunSummary, error) {
	started := time.Now()

	settings, err := h.deps.Sources.Parse(run.Source)
	if err != nil {
		return nil, err
	}
	filter, err := h.deps.Filters.Build(settings.IncludePatterns, settings.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	source, err := h.deps.Sources.Create(settings)
	if err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}

	state := &runState{
		run:      run,
		settings: settings,
		source:   source,
		filter:   filter,
		fields:   sortedKeys(settings.Fields),
	}

	log := logger.For(string(settings.Source.Service))
	log.Info("run %s: harvesting %s with %d worker(s)", run.ID, settings.Client.Home, settings.Threads)

	pool := NewPool(ctx, settings.Threads, h.opts.ShutdownTimeout)

	listErr := source.ListItems(ctx, func(item domain.Item) error {
		if err := pool.Submit(ctx, func(taskCtx context.Context) {
			h.process(taskCtx, state, item)
		}); err != nil {
			return err
		}
		state.submitted.Add(1)
		return nil
	})

	shutdownErr := pool.Shutdown()

	summary := &domain.RunSummary{
		RunID:     run.ID,
		Submitted: state.submitted.Load(),
		Finished:  state.finished.Load(),
		Discarded: state.discarded.Load(),
		Failed:    state.failed.Load(),
		Elapsed:   time.Since(started),
	}
	log.Info("run %s: %d submitted, %d finished, %d discarded, %d failed in %s",
		run.ID, summary.Submitted, summary.Finished, summary.Discarded, summary.Failed,
		summary.Elapsed.Round(time.Millisecond))

	if listErr != nil {
		listErr = fmt.Errorf("list items: %w", listErr)
	}
	if err := errors.Join(listErr, shutdownErr); err != nil {
		return summary, err
	}
	return summary, nil
}

// process runs one item through its lifecycle. Every exit path closes the
// stats key exactly once, and a panic is recorded like any other failure.
func (h *HarvestPipeline) process(ctx context.Context, state *runState, item domain.Item) {
	key := domain.NewStatsKey(item.ViewURL)
	h.deps.Stats.Begin(key)
	defer h.deps.Stats.Done(key)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("item %s panicked: %v", key.URL(), r)
			h.fail(ctx, state, key, &domain.PanicError{Value: r})
		}
	}()

	if !state.filter.Matches(item.ViewURL) {
		h.deps.Stats.Discard(key)
		state.discarded.Add(1)
		return
	}

	if err := h.harvest(ctx, state, item, key); err != nil {
		h.fail(ctx, state, key, err)
		return
	}

	h.deps.Stats.Record(key, domain.ActionFinished)
	state.finished.Add(1)
}

// fail records one item failure. The record outlives the task context so
// items cancelled at shutdown still leave a trace.
func (h *HarvestPipeline) fail(ctx context.Context, state *runState, key *domain.StatsKey, err error) {
	kind, cause := ClassifyFailure(err)
	logger.Debug("failed %s: %s: %v", key.URL(), kind, err)
	h.deps.Failures.Record(context.WithoutCancel(ctx), state.run, kind, key.URL(), cause)
	h.deps.Stats.Record(key, domain.ActionException)
	state.failed.Add(1)
}

// harvest prepares, evaluates and stores one item.
func (h *HarvestPipeline) harvest(ctx context.Context, state *runState, item domain.Item, key *domain.StatsKey) error {
	// 1. Extract body and comment text
	record, err := h.prepare(ctx, state, item)
	if err != nil {
		return err
	}
	h.deps.Stats.Record(key, domain.ActionPrepared)

	// 2. Evaluate output fields
	doc, err := h.evaluate(state, record)
	if err != nil {
		return err
	}
	if u, ok := doc["url"].(string); ok && u != "" {
		key.SetURL(u)
	}
	h.deps.Stats.Record(key, domain.ActionEvaluated)

	// 3. Dispatch
	if err := h.deps.Sink.Store(ctx, state.run, doc); err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	return nil
}

// prepare builds the record handed to field evaluation.
func (h *HarvestPipeline) prepare(ctx context.Context, state *runState, item domain.Item) (map[string]any, error) {
	content, err := h.extract(state, item.BodyHTML)
	if err != nil {
		return nil, fmt.Errorf("extract body: %w", err)
	}

	var comments []string
	err = state.source.ListComments(ctx, item, func(c domain.Comment) error {
		text, err := h.extract(state, c.BodyHTML)
		if err != nil {
			return fmt.Errorf("extract comment %s: %w", c.ID, err)
		}
		if text != "" {
			comments = append(comments, text)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	metadata := item.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	return map[string]any{
		"id":            item.ID,
		"key":           item.Key,
		"kind":          string(item.Kind),
		"title":         item.Title,
		"content":       content,
		"comments":      strings.Join(comments, "\n"),
		"last_modified": domain.FormatTimestamp(item.LastModified),
		"view_url":      item.ViewURL,
		"metadata":      metadata,
	}, nil
}

// extract applies the ignore_error policy: with it set, an extraction
// failure degrades to empty text.
func (h *HarvestPipeline) extract(state *runState, body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", nil
	}
	text, err := h.deps.Extractor.Extract(body, MIMETypeHTML)
	if err != nil {
		if state.settings.IgnoreError {
			logger.Debug("ignoring extraction failure: %v", err)
			return "", nil
		}
		return "", err
	}
	return text, nil
}

// evaluate runs every configured field expression against the record.
func (h *HarvestPipeline) evaluate(state *runState, record map[string]any) (map[string]any, error) {
	vars := map[string]any{"item": record}
	doc := make(map[string]any, len(state.fields))

	for _, name := range state.fields {
		expr := state.settings.Fields[name]
		value, err := h.deps.Evaluator.Evaluate(expr, vars)
		if err != nil {
			var evalErr *domain.EvaluationError
			if errors.As(err, &evalErr) && evalErr.Field == "" {
				named := *evalErr
				named.Field = name
				return nil, &named
			}
			if evalErr == nil {
				return nil, &domain.EvaluationError{Field: name, Expression: expr, Err: err}
			}
			return nil, err
		}
		doc[name] = value
	}
	return doc, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

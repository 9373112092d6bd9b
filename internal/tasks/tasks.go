// package tasks implements recommendation and catalog ingestion workflows.
//
// The core abstraction is Engine, which loads a fresh catalog snapshot per request and ranks it.
// Ingestion emits progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundalike/internal/metrics"
	"github.com/desertthunder/soundalike/internal/models"
	"github.com/desertthunder/soundalike/internal/recommend"
	"github.com/desertthunder/soundalike/internal/shared"
)

// CatalogStore is the backing store the engine reads artists from.
//
// Implemented by repositories.ArtistRepository.
type CatalogStore interface {
	// LoadCatalog returns every live artist in catalog order.
	LoadCatalog(ctx context.Context) ([]models.Artist, error)

	// NormalizeNames rewrites normalized names and returns how many changed.
	NormalizeNames(ctx context.Context) (int, error)
}

// EngineOptions configure an [Engine].
type EngineOptions struct {
	Defaults        recommend.Options     // used by [Engine.Recommend]
	NormalizeOnRead bool                  // normalize names before every load
	Vocabulary      *recommend.Vocabulary // pinned vocabulary, nil derives one per snapshot
}

// EngineOptionsFromConfig maps the [recommender] config section to engine options.
func EngineOptionsFromConfig(cfg shared.RecommenderConfig) EngineOptions {
	return EngineOptions{
		Defaults: recommend.Options{
			TopN:              cfg.TopN,
			IncludePopularity: cfg.IncludePopularity,
			ExcludeInput:      cfg.ExcludeInput,
		},
		NormalizeOnRead: cfg.NormalizeOnRead,
	}
}

// Engine serves recommendation requests from a [CatalogStore].
type Engine struct {
	store   CatalogStore
	logger  *log.Logger
	metrics *metrics.Recorder
	opts    EngineOptions
}

// NewEngine creates an engine. A nil logger discards output and a nil recorder records nothing.
func NewEngine(store CatalogStore, logger *log.Logger, rec *metrics.Recorder, opts EngineOptions) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		store:   store,
		logger:  shared.WithLogger(logger, "component", "engine"),
		metrics: rec,
		opts:    opts,
	}
}

// Defaults returns the options [Engine.Recommend] uses.
func (e *Engine) Defaults() recommend.Options {
	return e.opts.Defaults
}

// Normalize rewrites normalized names in the store.
func (e *Engine) Normalize(ctx context.Context) (int, error) {
	changed, err := e.store.NormalizeNames(ctx)
	if err != nil {
		e.metrics.RecordStoreError("normalize")
		return 0, fmt.Errorf("failed to normalize names: %w", err)
	}
	e.metrics.RecordNormalized(changed)
	if changed > 0 {
		e.logger.Info("normalized artist names", "changed", changed)
	}
	return changed, nil
}

// Snapshot loads the current catalog.
func (e *Engine) Snapshot(ctx context.Context) (*recommend.Snapshot, error) {
	catalog, err := e.store.LoadCatalog(ctx)
	if err != nil {
		e.metrics.RecordStoreError("load")
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	if e.opts.Vocabulary != nil {
		return recommend.NewSnapshotWithVocabulary(catalog, *e.opts.Vocabulary), nil
	}
	return recommend.NewSnapshot(catalog), nil
}

// Recommend ranks the catalog against preferred using the engine defaults.
func (e *Engine) Recommend(ctx context.Context, preferred []string) (*recommend.Result, error) {
	return e.RecommendWith(ctx, preferred, e.opts.Defaults)
}

// RecommendWith ranks the catalog against preferred.
//
// The returned error is non-nil only when the store fails; a no-match is reported in the result.
func (e *Engine) RecommendWith(ctx context.Context, preferred []string, opts recommend.Options) (*recommend.Result, error) {
	start := time.Now()

	if e.opts.NormalizeOnRead {
		if _, err := e.Normalize(ctx); err != nil {
			return nil, err
		}
	}

	snapshot, err := e.Snapshot(ctx)
	if err != nil {
		e.logger.Error("catalog unavailable", "error", err)
		return nil, err
	}

	e.logger.Debug("loaded catalog",
		"artists", snapshot.Len(),
		"genres", snapshot.Vocabulary().Len(),
		"vocabulary", snapshot.Vocabulary().Version(),
	)

	result := recommend.RecommendWith(snapshot, preferred, opts)
	elapsed := time.Since(start)
	e.metrics.RecordRecommendation(result.Kind.String(), snapshot.Len(), elapsed)

	if result.OK() {
		e.logger.Info("recommended artists",
			"input", preferred,
			"matched", result.Matched,
			"returned", len(result.Recommendations),
			"elapsed", elapsed,
		)
	} else {
		e.logger.Warn("no preferred artist in catalog", "input", preferred)
	}

	return &result, nil
}

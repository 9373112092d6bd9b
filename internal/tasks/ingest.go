package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundalike/internal/metrics"
	"github.com/desertthunder/soundalike/internal/models"
	"github.com/desertthunder/soundalike/internal/services"
	"github.com/desertthunder/soundalike/internal/shared"
)

// ArtistWriter persists ingested artists.
//
// Implemented by repositories.CatalogWriter.
type ArtistWriter interface {
	// SaveArtist upserts by normalized name and reports whether a row was created.
	SaveArtist(artist models.Artist, externalID string) (bool, error)
}

// IngestFailure records an artist that could not be ingested.
type IngestFailure struct {
	Name  string
	Error error
}

// IngestResult summarizes an import or sync.
type IngestResult struct {
	Total      int
	Created    int
	Updated    int
	Skipped    int
	Normalized int
	Failures   []IngestFailure
}

// Ingester writes artists into the catalog.
type Ingester struct {
	writer  ArtistWriter
	store   CatalogStore
	source  services.ArtistSource
	logger  *log.Logger
	metrics *metrics.Recorder
}

// NewIngester creates an ingester. store is used to normalize names once writing finishes and may be nil.
func NewIngester(writer ArtistWriter, store CatalogStore, logger *log.Logger, rec *metrics.Recorder) *Ingester {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Ingester{
		writer:  writer,
		store:   store,
		logger:  shared.WithLogger(logger, "component", "ingest"),
		metrics: rec,
	}
}

// WithSource sets the external service [Ingester.Sync] reads from.
func (i *Ingester) WithSource(src services.ArtistSource) *Ingester {
	i.source = src
	return i
}

// Import upserts parsed catalog records. Records without a name are skipped.
func (i *Ingester) Import(ctx context.Context, progress chan<- ProgressUpdate, artists []models.Artist) (*IngestResult, error) {
	result := &IngestResult{Total: len(artists)}

	for n, artist := range artists {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		step := n + 1
		if err := artist.Validate(); err != nil {
			i.logger.Warn("skipping malformed record", "index", n, "error", err)
			i.skip(result, "file", fmt.Sprintf("record %d", step), err)
			sendProgress(progress, importUpdate(step, len(artists), fmt.Sprintf("record %d", step), "skipped"))
			continue
		}

		outcome, err := i.save(result, "file", artist, "")
		if err != nil {
			sendProgress(progress, importUpdate(step, len(artists), artist.Name, "failed"))
			continue
		}
		sendProgress(progress, importUpdate(step, len(artists), artist.Name, outcome))
	}

	if err := i.normalize(ctx, progress, result); err != nil {
		return result, err
	}

	i.logger.Info("import finished",
		"total", result.Total,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"failed", len(result.Failures)-result.Skipped,
	)
	return result, nil
}

// Sync looks each name up in the configured source and upserts what it finds.
func (i *Ingester) Sync(ctx context.Context, progress chan<- ProgressUpdate, names []string) (*IngestResult, error) {
	if i.source == nil {
		return nil, fmt.Errorf("%w: no artist source configured", shared.ErrServiceUnavailable)
	}

	result := &IngestResult{Total: len(names)}
	source := i.source.Name()

	for n, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		step := n + 1
		sendProgress(progress, syncingUpdate(step, len(names), name))

		found, err := i.source.FetchArtist(ctx, name)
		if err != nil {
			if errors.Is(err, shared.ErrArtistNotFound) {
				i.skip(result, source, name, err)
			} else {
				i.fail(result, source, name, err)
			}
			sendProgress(progress, syncFailedUpdate(step, len(names), name, err))
			continue
		}

		outcome, err := i.save(result, source, found.Artist, found.ExternalID)
		if err != nil {
			sendProgress(progress, syncFailedUpdate(step, len(names), name, err))
			continue
		}
		sendProgress(progress, syncedUpdate(step, len(names), found.Artist.Name, outcome))
	}

	if err := i.normalize(ctx, progress, result); err != nil {
		return result, err
	}

	i.logger.Info("sync finished",
		"source", source,
		"total", result.Total,
		"created", result.Created,
		"updated", result.Updated,
		"failed", len(result.Failures),
	)
	return result, nil
}

func (i *Ingester) save(result *IngestResult, source string, artist models.Artist, externalID string) (string, error) {
	created, err := i.writer.SaveArtist(artist, externalID)
	if err != nil {
		i.fail(result, source, artist.Name, err)
		return "", err
	}

	outcome := "updated"
	if created {
		outcome = "created"
		result.Created++
	} else {
		result.Updated++
	}
	i.metrics.RecordIngest(source, outcome)
	return outcome, nil
}

func (i *Ingester) skip(result *IngestResult, source, name string, err error) {
	result.Skipped++
	result.Failures = append(result.Failures, IngestFailure{Name: name, Error: err})
	i.metrics.RecordIngest(source, "skipped")
}

func (i *Ingester) fail(result *IngestResult, source, name string, err error) {
	i.logger.Error("failed to ingest artist", "artist", name, "error", err)
	result.Failures = append(result.Failures, IngestFailure{Name: name, Error: err})
	i.metrics.RecordIngest(source, "failed")
}

func (i *Ingester) normalize(ctx context.Context, progress chan<- ProgressUpdate, result *IngestResult) error {
	if i.store == nil {
		return nil
	}

	changed, err := i.store.NormalizeNames(ctx)
	if err != nil {
		i.metrics.RecordStoreError("normalize")
		return fmt.Errorf("failed to normalize names: %w", err)
	}

	result.Normalized = changed
	i.metrics.RecordNormalized(changed)
	sendProgress(progress, normalizeUpdate(changed))
	return nil
}

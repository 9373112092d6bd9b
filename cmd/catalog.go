package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/soundalike/internal/formatter"
	"github.com/desertthunder/soundalike/internal/models"
	"github.com/desertthunder/soundalike/internal/repositories"
	"github.com/desertthunder/soundalike/internal/shared"
	"github.com/desertthunder/soundalike/internal/tasks"
)

// CatalogImport reads a catalog file and upserts every record.
func (r *Runner) CatalogImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("%w: catalog file path", shared.ErrMissingArgument)
	}

	artists, err := formatter.ReadCatalogFile(path)
	if err != nil {
		return err
	}

	repo, closeDB, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	progress := make(chan tasks.ProgressUpdate, 16)
	done := r.drainProgress(progress)

	ingester := tasks.NewIngester(repositories.NewCatalogWriter(repo), repo, r.logger, r.metrics)
	result, err := ingester.Import(ctx, progress, artists)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	return r.writeIngestResult("Imported", result)
}

// CatalogAdd upserts one artist from flags.
func (r *Runner) CatalogAdd(ctx context.Context, cmd *cli.Command) error {
	artist := models.Artist{
		Name:       cmd.String("name"),
		Genre:      cmd.String("genre"),
		Popularity: cmd.Int("popularity"),
		Songs:      cmd.StringSlice("song"),
	}

	repo, closeDB, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	saved, created, err := repo.Upsert(artist, "")
	if err != nil {
		return err
	}

	verb := "Updated"
	if created {
		verb = "Added"
	}
	return r.writePlain("✓ %s %s (%s)\n", verb, saved.Name(), saved.Genre())
}

// CatalogList prints live artists in catalog order.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if genre := cmd.String("genre"); genre != "" {
		criteria["genre"] = shared.NormalizeGenre(genre)
	}

	persisted, err := repo.List(criteria)
	if err != nil {
		return err
	}

	artists := make([]models.Artist, len(persisted))
	for i, p := range persisted {
		artists[i] = p.Artist()
	}

	switch strings.ToLower(cmd.String("format")) {
	case "json":
		return r.writeJSON(artists, true)
	case "csv":
		data, err := formatter.CatalogToCSV(artists)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case "", "text":
		if len(artists) == 0 {
			return r.writePlain("No artists in the catalog.\n")
		}
		for i, a := range artists {
			r.writePlain("%3d. %-30s %-16s %3d", i+1, a.Name, a.Genre, a.Popularity)
			if len(a.Songs) > 0 {
				r.writePlain("  %s", strings.Join(a.Songs, ", "))
			}
			r.writePlain("\n")
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown list format %q", shared.ErrInvalidFlag, cmd.String("format"))
	}
}

// CatalogRemove soft-deletes the artist whose normalized name matches the argument.
func (r *Runner) CatalogRemove(ctx context.Context, cmd *cli.Command) error {
	name := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: artist name", shared.ErrMissingArgument)
	}

	repo, closeDB, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	artist, err := repo.GetByName(name)
	if err != nil {
		return err
	}
	if err := repo.Delete(artist.ID()); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s\n", artist.Name())
}

// CatalogNormalize rewrites normalized names.
func (r *Runner) CatalogNormalize(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	changed, err := r.newEngine(repo).Normalize(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Normalized %d artist names\n", changed)
}

// CatalogGenres prints the genre vocabulary with counts.
func (r *Runner) CatalogGenres(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	genres, err := repo.Genres(ctx)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("%d genres", len(genres)))
	for _, g := range genres {
		r.writePlain("%-24s %d\n", g.Genre, g.Count)
	}
	return nil
}

// CatalogSync fetches each --artist from the configured source and upserts it.
func (r *Runner) CatalogSync(ctx context.Context, cmd *cli.Command) error {
	names := cmd.StringSlice("artist")
	if len(names) == 0 {
		return fmt.Errorf("%w: at least one --artist", shared.ErrMissingArgument)
	}

	source, err := r.artistSource()
	if err != nil {
		return err
	}

	repo, closeDB, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	progress := make(chan tasks.ProgressUpdate, 16)
	done := r.drainProgress(progress)

	ingester := tasks.NewIngester(repositories.NewCatalogWriter(repo), repo, r.logger, r.metrics).WithSource(source)
	result, err := ingester.Sync(ctx, progress, names)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	return r.writeIngestResult("Synced", result)
}

func (r *Runner) writeIngestResult(verb string, result *tasks.IngestResult) error {
	r.writePlain("✓ %s %d artists (created %d, updated %d, skipped %d)\n",
		verb, result.Created+result.Updated, result.Created, result.Updated, result.Skipped)

	for _, f := range result.Failures {
		if errors.Is(f.Error, shared.ErrArtistNotFound) {
			r.writePlain("  • %s: not found\n", f.Name)
			continue
		}
		r.writePlain("  • %s: %v\n", f.Name, f.Error)
	}
	return nil
}

package repositories

import (
	"fmt"

	"github.com/desertthunder/soundalike/internal/models"
)

// CatalogWriter implements tasks.ArtistWriter using ArtistRepository.
//
// Artists are matched on normalized name, so importing the same file twice updates rows in place.
type CatalogWriter struct {
	repo *ArtistRepository
}

// NewCatalogWriter creates a new CatalogWriter with the given repository
func NewCatalogWriter(repo *ArtistRepository) *CatalogWriter {
	return &CatalogWriter{repo: repo}
}

// SaveArtist upserts an artist and reports whether a new row was created.
func (w *CatalogWriter) SaveArtist(artist models.Artist, spotifyID string) (bool, error) {
	_, created, err := w.repo.Upsert(artist, spotifyID)
	if err != nil {
		return false, fmt.Errorf("failed to save artist %q: %w", artist.Name, err)
	}
	return created, nil
}

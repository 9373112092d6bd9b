// package services defines interface ArtistSource for enriching the catalog from HTTP APIs
//
// Spotify
package services

import (
	"context"

	"github.com/desertthunder/soundalike/internal/models"
)

// ArtistSource looks artists up in an external music service.
type ArtistSource interface {
	// FetchArtist returns the best match for name with its genre, popularity, and top songs.
	// Returns [shared.ErrArtistNotFound] when the service has no match.
	FetchArtist(ctx context.Context, name string) (*SourceArtist, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// SourceArtist is an artist as reported by an [ArtistSource].
type SourceArtist struct {
	Artist     models.Artist
	ExternalID string // service-specific artist ID
}

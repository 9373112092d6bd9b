package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/soundalike/internal/shared"
)

// Artist is a catalog entry as the recommender sees it.
//
// NormalizedName is derived from Name and only used for matching user input.
type Artist struct {
	Name           string   `json:"name"`
	NormalizedName string   `json:"normalized_name,omitempty"`
	Genre          string   `json:"genre"`
	Popularity     int      `json:"popularity"`
	Songs          []string `json:"songs"`
}

// UnmarshalJSON accepts the canonical "songs" list as well as the legacy singular "song" field,
// which may hold either a string or a list of strings.
func (a *Artist) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name           string          `json:"name"`
		NormalizedName string          `json:"normalized_name"`
		Genre          string          `json:"genre"`
		Popularity     json.Number     `json:"popularity"`
		Songs          json.RawMessage `json:"songs"`
		Song           json.RawMessage `json:"song"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	a.Name = raw.Name
	a.NormalizedName = raw.NormalizedName
	a.Genre = raw.Genre
	a.Popularity = 0
	if raw.Popularity != "" {
		f, err := raw.Popularity.Float64()
		if err != nil {
			return fmt.Errorf("%w: popularity %q", shared.ErrInvalidInput, raw.Popularity)
		}
		a.Popularity = int(f)
	}

	songs, err := decodeSongs(raw.Songs)
	if err != nil {
		return err
	}
	legacy, err := decodeSongs(raw.Song)
	if err != nil {
		return err
	}
	a.Songs = append(songs, legacy...)
	return nil
}

// decodeSongs reads a JSON string or list of strings; null and absent values yield nil.
func decodeSongs(data json.RawMessage) ([]string, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("%w: songs must be a string or a list of strings", shared.ErrInvalidInput)
	}
	if single == "" {
		return nil, nil
	}
	return []string{single}, nil
}

// Normalize fills NormalizedName from Name and buckets a blank Genre.
func (a *Artist) Normalize() {
	a.NormalizedName = shared.NormalizeName(a.Name)
	a.Genre = shared.NormalizeGenre(a.Genre)
}

// Validate checks that the artist can be stored.
func (a Artist) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: artist name is required", shared.ErrInvalidInput)
	}
	return nil
}

// Recommendation is the caller-facing projection of a ranked [Artist].
type Recommendation struct {
	Name       string   `json:"name"`
	Popularity int      `json:"popularity"`
	Songs      []string `json:"songs"`
}

// PersistedArtist is a catalog row with lifecycle metadata.
//
// Sequence is the catalog order the recommender uses to break ties.
type PersistedArtist struct {
	id        string
	sequence  int
	spotifyID string
	artist    Artist
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

var _ Model = (*PersistedArtist)(nil)

// NewPersistedArtist wraps an [Artist] for storage, normalizing its name and genre.
func NewPersistedArtist(sequence int, artist Artist) *PersistedArtist {
	now := time.Now()
	artist.Normalize()
	return &PersistedArtist{
		sequence:  sequence,
		artist:    artist,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *PersistedArtist) ID() string             { return p.id }
func (p *PersistedArtist) Sequence() int          { return p.sequence }
func (p *PersistedArtist) SpotifyID() string      { return p.spotifyID }
func (p *PersistedArtist) Artist() Artist         { return p.artist }
func (p *PersistedArtist) Name() string           { return p.artist.Name }
func (p *PersistedArtist) NormalizedName() string { return p.artist.NormalizedName }
func (p *PersistedArtist) Genre() string          { return p.artist.Genre }
func (p *PersistedArtist) Popularity() int        { return p.artist.Popularity }
func (p *PersistedArtist) Songs() []string        { return p.artist.Songs }
func (p *PersistedArtist) CreatedAt() time.Time   { return p.createdAt }
func (p *PersistedArtist) UpdatedAt() time.Time   { return p.updatedAt }
func (p *PersistedArtist) DeletedAt() *time.Time  { return p.deletedAt }

func (p *PersistedArtist) SetID(id string)               { p.id = id }
func (p *PersistedArtist) SetSequence(sequence int)      { p.sequence = sequence }
func (p *PersistedArtist) SetSpotifyID(id string)        { p.spotifyID = id }
func (p *PersistedArtist) SetCreatedAt(t time.Time)      { p.createdAt = t }
func (p *PersistedArtist) SetUpdatedAt(t time.Time)      { p.updatedAt = t }
func (p *PersistedArtist) SetDeletedAt(t *time.Time)     { p.deletedAt = t }
func (p *PersistedArtist) SetNormalizedName(name string) { p.artist.NormalizedName = name }

// SetArtist replaces the catalog fields, keeping identity and sequence.
func (p *PersistedArtist) SetArtist(artist Artist) {
	artist.Normalize()
	p.artist = artist
}

// Validate checks the persisted fields.
func (p *PersistedArtist) Validate() error {
	if p.id == "" {
		return fmt.Errorf("%w: artist ID is required", shared.ErrInvalidInput)
	}
	return p.artist.Validate()
}

package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/soundalike/internal/models"
	"github.com/desertthunder/soundalike/internal/shared"
)

const artistColumns = `id, sequence, name, normalized_name, genre, popularity, songs, spotify_id, created_at, updated_at, deleted_at`

// ArtistRepository implements models.Repository[*models.PersistedArtist] for the recommender catalog.
//
// It is also the catalog store the recommendation engine reads from: see [ArtistRepository.LoadCatalog]
// and [ArtistRepository.NormalizeNames].
type ArtistRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.PersistedArtist] = (*ArtistRepository)(nil)

// NewArtistRepository creates a new ArtistRepository with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Create inserts a new [models.PersistedArtist] into the database with generated ID and sequence
func (r *ArtistRepository) Create(artist *models.PersistedArtist) error {
	sequence, err := NextSequence(r.db, "artists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	artist.SetID(shared.GenerateID())
	artist.SetSequence(sequence)

	if err := artist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	songs, err := encodeSongs(artist.Songs())
	if err != nil {
		return err
	}

	query := `
		INSERT INTO artists (id, sequence, name, normalized_name, genre, popularity, songs, spotify_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		artist.ID(),
		artist.Sequence(),
		artist.Name(),
		artist.NormalizedName(),
		artist.Genre(),
		artist.Popularity(),
		songs,
		artist.SpotifyID(),
		artist.CreatedAt(),
		artist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert artist: %w", err)
	}

	return nil
}

// Get retrieves an artist by ID, excluding soft-deleted artists
func (r *ArtistRepository) Get(id string) (*models.PersistedArtist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByName retrieves the first artist in catalog order whose normalized name matches name.
func (r *ArtistRepository) GetByName(name string) (*models.PersistedArtist, error) {
	query := `
		SELECT ` + artistColumns + `
		FROM artists
		WHERE normalized_name = ? AND deleted_at IS NULL
		ORDER BY sequence ASC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRow(query, shared.NormalizeName(name)))
}

// GetBySpotifyID retrieves an artist by its Spotify artist ID
func (r *ArtistRepository) GetBySpotifyID(spotifyID string) (*models.PersistedArtist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists WHERE spotify_id = ? AND deleted_at IS NULL LIMIT 1`
	return r.scanOne(r.db.QueryRow(query, spotifyID))
}

// Update modifies an existing artist in the database
func (r *ArtistRepository) Update(artist *models.PersistedArtist) error {
	if err := artist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	songs, err := encodeSongs(artist.Songs())
	if err != nil {
		return err
	}

	now := time.Now()
	artist.SetUpdatedAt(now)

	query := `
		UPDATE artists
		SET name = ?, normalized_name = ?, genre = ?, popularity = ?, songs = ?, spotify_id = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		artist.Name(),
		artist.NormalizedName(),
		artist.Genre(),
		artist.Popularity(),
		songs,
		artist.SpotifyID(),
		now,
		artist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update artist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrArtistNotFound, artist.ID())
	}

	return nil
}

// Delete soft-deletes an artist by ID
func (r *ArtistRepository) Delete(id string) error {
	query := `
		UPDATE artists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete artist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrArtistNotFound, id)
	}

	return nil
}

// List retrieves all artists matching the given criteria in catalog order, excluding soft-deleted artists
//
// Supported criteria: "genre" (string) and "limit" (int).
func (r *ArtistRepository) List(criteria map[string]any) ([]*models.PersistedArtist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists WHERE deleted_at IS NULL`
	args := []any{}

	if genre, ok := criteria["genre"].(string); ok && genre != "" {
		query += " AND genre = ?"
		args = append(args, genre)
	}

	query += " ORDER BY sequence ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	var artists []*models.PersistedArtist
	for rows.Next() {
		artist, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		artists = append(artists, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return artists, nil
}

// Upsert creates the artist, or updates the existing row with the same normalized name.
//
// An empty spotifyID leaves a stored Spotify ID untouched. The boolean reports whether a row was created.
func (r *ArtistRepository) Upsert(artist models.Artist, spotifyID string) (*models.PersistedArtist, bool, error) {
	if err := artist.Validate(); err != nil {
		return nil, false, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := r.GetByName(artist.Name)
	switch {
	case errors.Is(err, shared.ErrArtistNotFound):
		created := models.NewPersistedArtist(0, artist)
		created.SetSpotifyID(spotifyID)
		if err := r.Create(created); err != nil {
			return nil, false, err
		}
		return created, true, nil
	case err != nil:
		return nil, false, err
	}

	existing.SetArtist(artist)
	if spotifyID != "" {
		existing.SetSpotifyID(spotifyID)
	}
	if err := r.Update(existing); err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// LoadCatalog reads every live artist in catalog order.
//
// Any failure is reported as [shared.ErrStoreUnavailable].
func (r *ArtistRepository) LoadCatalog(ctx context.Context) ([]models.Artist, error) {
	query := `
		SELECT name, normalized_name, genre, popularity, songs
		FROM artists
		WHERE deleted_at IS NULL
		ORDER BY sequence ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query catalog: %v", shared.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	catalog := []models.Artist{}
	for rows.Next() {
		var (
			artist models.Artist
			songs  string
		)
		if err := rows.Scan(&artist.Name, &artist.NormalizedName, &artist.Genre, &artist.Popularity, &songs); err != nil {
			return nil, fmt.Errorf("%w: failed to scan catalog row: %v", shared.ErrStoreUnavailable, err)
		}
		if artist.Songs, err = decodeSongs(songs); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
		}
		catalog = append(catalog, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", shared.ErrStoreUnavailable, err)
	}

	return catalog, nil
}

// NormalizeNames rewrites normalized_name as the title-cased name for every live artist.
//
// Returns the number of rows whose value changed, so a second run reports 0.
func (r *ArtistRepository) NormalizeNames(ctx context.Context) (int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, normalized_name FROM artists WHERE deleted_at IS NULL`)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to query names: %v", shared.ErrStoreUnavailable, err)
	}

	pending := map[string]string{}
	for rows.Next() {
		var id, name, normalized string
		if err := rows.Scan(&id, &name, &normalized); err != nil {
			rows.Close()
			return 0, fmt.Errorf("%w: failed to scan name: %v", shared.ErrStoreUnavailable, err)
		}
		if want := shared.NormalizeName(name); want != normalized {
			pending[id] = want
		}
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return 0, fmt.Errorf("%w: row iteration error: %v", shared.ErrStoreUnavailable, err)
	}

	if len(pending) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	now := time.Now()
	for id, normalized := range pending {
		if _, err := tx.ExecContext(ctx, `UPDATE artists SET normalized_name = ?, updated_at = ? WHERE id = ?`, normalized, now, id); err != nil {
			return 0, fmt.Errorf("%w: failed to update normalized name: %v", shared.ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit normalization: %v", shared.ErrStoreUnavailable, err)
	}

	return len(pending), nil
}

// GenreCount is a genre label and the number of live artists carrying it.
type GenreCount struct {
	Genre string
	Count int
}

// Genres lists the distinct genres in the catalog, sorted by label.
func (r *ArtistRepository) Genres(ctx context.Context) ([]GenreCount, error) {
	query := `
		SELECT genre, COUNT(*)
		FROM artists
		WHERE deleted_at IS NULL
		GROUP BY genre
		ORDER BY genre ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	defer rows.Close()

	var genres []GenreCount
	for rows.Next() {
		var g GenreCount
		if err := rows.Scan(&g.Genre, &g.Count); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return genres, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanOne scans a single [sql.Row] into a [models.PersistedArtist]
func (r *ArtistRepository) scanOne(row *sql.Row) (*models.PersistedArtist, error) {
	artist, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrArtistNotFound
	}
	return artist, err
}

// scan reads the columns in artistColumns order.
func (r *ArtistRepository) scan(row scanner) (*models.PersistedArtist, error) {
	var (
		id         string
		sequence   int
		dto        models.Artist
		songs      string
		spotifyID  string
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
		normalized string
	)

	err := row.Scan(&id, &sequence, &dto.Name, &normalized, &dto.Genre, &dto.Popularity, &songs, &spotifyID, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artist: %w", err)
	}

	if dto.Songs, err = decodeSongs(songs); err != nil {
		return nil, err
	}

	artist := models.NewPersistedArtist(sequence, dto)
	artist.SetID(id)
	artist.SetNormalizedName(normalized)
	artist.SetSpotifyID(spotifyID)
	artist.SetCreatedAt(createdAt)
	artist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		artist.SetDeletedAt(&deletedAt.Time)
	}

	return artist, nil
}

func encodeSongs(songs []string) (string, error) {
	if songs == nil {
		songs = []string{}
	}
	data, err := json.Marshal(songs)
	if err != nil {
		return "", fmt.Errorf("failed to encode songs: %w", err)
	}
	return string(data), nil
}

func decodeSongs(data string) ([]string, error) {
	if data == "" {
		return []string{}, nil
	}
	var songs []string
	if err := json.Unmarshal([]byte(data), &songs); err != nil {
		return nil, fmt.Errorf("failed to decode songs: %w", err)
	}
	return songs, nil
}

// Spotify API implementation of [ArtistSource]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/soundalike/internal/models"
	"github.com/desertthunder/soundalike/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// DefaultRateLimit is the default number of Spotify requests per second.
	DefaultRateLimit = 5.0

	// MaxTopTracks caps the songs recorded per synced artist.
	MaxTopTracks = 5

	defaultMarket = "US"
)

type followers struct {
	Total int `json:"total"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Genres     []string       `json:"genres"`
	Popularity int            `json:"popularity"`
	Followers  followers      `json:"followers"`
	Images     []SpotifyImage `json:"images"`
	URI        string         `json:"uri"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

type spotifyArtistPage struct {
	Items []SpotifyArtist `json:"items"`
	Total int             `json:"total"`
}

// SpotifySearchResponse is the body of GET /search with type=artist.
type SpotifySearchResponse struct {
	Artists spotifyArtistPage `json:"artists"`
}

// SpotifyOptions override the endpoints and pacing of a [SpotifyService].
type SpotifyOptions struct {
	BaseURL    string       // API root, defaults to the public Web API
	TokenURL   string       // token endpoint, defaults to accounts.spotify.com
	RateLimit  float64      // requests per second, defaults to [DefaultRateLimit]
	Market     string       // market for top tracks, defaults to US
	HTTPClient *http.Client // transport used for both token and API calls
}

// SpotifyService implements [ArtistSource] for the Spotify Web API.
// Uses the [clientcredentials] grant and a [rate.Limiter] shared by every request.
type SpotifyService struct {
	config     *clientcredentials.Config
	baseURL    string
	market     string
	limiter    *rate.Limiter
	baseClient *http.Client
	httpClient *http.Client
}

var _ ArtistSource = (*SpotifyService)(nil)

// NewSpotifyService creates a new Spotify service with the given client credentials.
func NewSpotifyService(credentials map[string]string, opts SpotifyOptions) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id in credentials", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret in credentials", shared.ErrMissingCredentials)
	}

	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.Market == "" {
		opts.Market = defaultMarket
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &SpotifyService{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     opts.TokenURL,
		},
		baseURL:    opts.BaseURL,
		market:     opts.Market,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		baseClient: opts.HTTPClient,
	}, nil
}

// NewSpotifyServiceFromConfig builds a service from the [credentials.spotify] config section.
func NewSpotifyServiceFromConfig(cfg shared.SpotifyConfig) (*SpotifyService, error) {
	return NewSpotifyService(map[string]string{
		"client_id":     cfg.ClientID,
		"client_secret": cfg.ClientSecret,
	}, SpotifyOptions{})
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate prepares the token-refreshing HTTP client. The token itself is fetched on the first request.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.baseClient)
	s.httpClient = s.config.Client(ctx)
	return nil
}

// doRequest performs a rate-limited, authenticated GET against the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	if s.httpClient == nil {
		if err := s.Authenticate(ctx); err != nil {
			return err
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}
		return fmt.Errorf("%w: request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify API error: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SearchArtist returns the top search hit for name.
func (s *SpotifyService) SearchArtist(ctx context.Context, name string) (*SpotifyArtist, error) {
	query := url.Values{}
	query.Set("q", name)
	query.Set("type", "artist")
	query.Set("limit", "1")

	var response SpotifySearchResponse
	if err := s.doRequest(ctx, "/search?"+query.Encode(), &response); err != nil {
		return nil, err
	}

	if len(response.Artists.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, name)
	}

	return &response.Artists.Items[0], nil
}

// Artist retrieves an artist by ID.
func (s *SpotifyService) Artist(ctx context.Context, artistID string) (*SpotifyArtist, error) {
	var artist SpotifyArtist
	if err := s.doRequest(ctx, "/artists/"+url.PathEscape(artistID), &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// ArtistTopTracks retrieves an artist's most popular tracks in the configured market.
func (s *SpotifyService) ArtistTopTracks(ctx context.Context, artistID string) ([]SpotifyTrack, error) {
	endpoint := fmt.Sprintf("/artists/%s/top-tracks?market=%s", url.PathEscape(artistID), url.QueryEscape(s.market))

	var response struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return response.Tracks, nil
}

// FetchArtist searches for name and maps the hit and its top tracks to a catalog artist.
func (s *SpotifyService) FetchArtist(ctx context.Context, name string) (*SourceArtist, error) {
	found, err := s.SearchArtist(ctx, name)
	if err != nil {
		return nil, err
	}

	tracks, err := s.ArtistTopTracks(ctx, found.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top tracks for %s: %w", found.Name, err)
	}

	return &SourceArtist{Artist: found.toArtist(tracks), ExternalID: found.ID}, nil
}

func (a SpotifyArtist) toArtist(tracks []SpotifyTrack) models.Artist {
	artist := models.Artist{
		Name:       a.Name,
		Popularity: a.Popularity,
		Songs:      []string{},
	}

	if len(a.Genres) > 0 {
		artist.Genre = shared.NormalizeName(a.Genres[0])
	}

	for _, t := range tracks {
		if len(artist.Songs) == MaxTopTracks {
			break
		}
		artist.Songs = append(artist.Songs, t.Name)
	}

	return artist
}

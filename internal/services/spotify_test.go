package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/soundalike/internal/shared"
)

// fakeSpotify serves the token endpoint and the handful of Web API routes the service uses.
func fakeSpotify(t *testing.T, tokenStatus int, artists []SpotifyArtist, tracks []SpotifyTrack) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var apiCalls atomic.Int32
	mux := http.NewServeMux()

	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenStatus != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tokenStatus)
			w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"test-token","token_type":"bearer","expires_in":3600}`))
	})

	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("type") != "artist" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(SpotifySearchResponse{Artists: spotifyArtistPage{Items: artists, Total: len(artists)}})
	})

	mux.HandleFunc("/v1/artists/", func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		if strings.HasSuffix(r.URL.Path, "/top-tracks") {
			json.NewEncoder(w).Encode(map[string]any{"tracks": tracks})
			return
		}
		if len(artists) == 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(artists[0])
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &apiCalls
}

func newTestService(t *testing.T, srv *httptest.Server) *SpotifyService {
	t.Helper()

	svc, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	}, SpotifyOptions{
		BaseURL:    srv.URL + "/v1",
		TokenURL:   srv.URL + "/api/token",
		RateLimit:  1000,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return svc
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
			}, SpotifyOptions{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}

			if srv.baseURL != spotifyBaseURL || srv.config.TokenURL != spotifyTokenURL {
				t.Errorf("expected default endpoints, got %s and %s", srv.baseURL, srv.config.TokenURL)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "test_client_secret"}, SpotifyOptions{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "test_client_id"}, SpotifyOptions{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("From Config", func(t *testing.T) {
			if _, err := NewSpotifyServiceFromConfig(shared.SpotifyConfig{}); err == nil {
				t.Error("expected error for empty credentials")
			}
		})
	})

	t.Run("FetchArtist", func(t *testing.T) {
		artists := []SpotifyArtist{{ID: "3TVXtAsR1Inumwj472S9r4", Name: "Drake", Genres: []string{"canadian hip hop", "rap"}, Popularity: 95}}
		tracks := []SpotifyTrack{
			{Name: "God's Plan"}, {Name: "One Dance"}, {Name: "Hotline Bling"},
			{Name: "In My Feelings"}, {Name: "Passionfruit"}, {Name: "Nice For What"},
		}
		srv, calls := fakeSpotify(t, http.StatusOK, artists, tracks)
		svc := newTestService(t, srv)

		got, err := svc.FetchArtist(context.Background(), "drake")
		if err != nil {
			t.Fatalf("failed to fetch artist: %v", err)
		}

		if got.ExternalID != "3TVXtAsR1Inumwj472S9r4" {
			t.Errorf("unexpected external ID %s", got.ExternalID)
		}
		if got.Artist.Name != "Drake" || got.Artist.Popularity != 95 {
			t.Errorf("unexpected artist: %+v", got.Artist)
		}
		if got.Artist.Genre != "Canadian Hip Hop" {
			t.Errorf("expected first genre title-cased, got %q", got.Artist.Genre)
		}
		want := []string{"God's Plan", "One Dance", "Hotline Bling", "In My Feelings", "Passionfruit"}
		if !reflect.DeepEqual(got.Artist.Songs, want) {
			t.Errorf("expected at most %d top tracks, got %v", MaxTopTracks, got.Artist.Songs)
		}
		if calls.Load() != 2 {
			t.Errorf("expected search and top-tracks calls, got %d", calls.Load())
		}
	})

	t.Run("FetchArtist without genres", func(t *testing.T) {
		srv, _ := fakeSpotify(t, http.StatusOK, []SpotifyArtist{{ID: "x", Name: "New Act"}}, nil)
		svc := newTestService(t, srv)

		got, err := svc.FetchArtist(context.Background(), "new act")
		if err != nil {
			t.Fatalf("failed to fetch artist: %v", err)
		}
		if got.Artist.Genre != "" || len(got.Artist.Songs) != 0 {
			t.Errorf("expected blank genre and no songs, got %+v", got.Artist)
		}
	})

	t.Run("SearchArtist not found", func(t *testing.T) {
		srv, _ := fakeSpotify(t, http.StatusOK, nil, nil)
		svc := newTestService(t, srv)

		_, err := svc.SearchArtist(context.Background(), "Nonexistent Artist")
		if !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected ErrArtistNotFound, got %v", err)
		}
	})

	t.Run("Artist API error", func(t *testing.T) {
		srv, _ := fakeSpotify(t, http.StatusOK, nil, nil)
		svc := newTestService(t, srv)

		_, err := svc.Artist(context.Background(), "missing")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("rejected credentials", func(t *testing.T) {
		srv, calls := fakeSpotify(t, http.StatusUnauthorized, nil, nil)
		svc := newTestService(t, srv)

		_, err := svc.SearchArtist(context.Background(), "Drake")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if calls.Load() != 0 {
			t.Error("API must not be called without a token")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv, _ := fakeSpotify(t, http.StatusOK, nil, nil)
		svc := newTestService(t, srv)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := svc.SearchArtist(ctx, "Drake"); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

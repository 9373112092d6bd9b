// Package services defines the [ArtistSource] interface for external music catalogs and implements it for Spotify.
//
// # Spotify Implementation
//
// [SpotifyService] uses the OAuth2 client credentials grant. No user login is involved: the
// application's client ID and secret are exchanged for an app token, which the
// [clientcredentials.Config] client fetches and refreshes on demand.
//
// Requests are paced with a [rate.Limiter] so bulk syncs stay under the Web API quota.
//
// # Mapping
//
// [SpotifyService.FetchArtist] searches for the artist, reads the first reported genre and the
// popularity score, and takes the names of the artist's top tracks as songs:
//   - genre: first entry of genres, title-cased to match catalog labels ("pop" → "Pop")
//   - popularity: passed through (0-100)
//   - songs: top-track names, at most [MaxTopTracks]
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : client_id or client_secret not configured
//   - [shared.ErrAuthFailed] : token exchange rejected
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
//   - [shared.ErrArtistNotFound] : search returned no artists
package services

// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/soundalike/internal/models"
	"github.com/desertthunder/soundalike/internal/services"
	"github.com/desertthunder/soundalike/internal/shared"
)

// SampleCatalog returns a small normalized catalog in catalog order.
func SampleCatalog() []models.Artist {
	artists := []models.Artist{
		{Name: "Ed Sheeran", Genre: "Pop", Popularity: 90, Songs: []string{"Shape of You", "Perfect"}},
		{Name: "Drake", Genre: "Hip Hop", Popularity: 95, Songs: []string{"Hotline Bling"}},
		{Name: "Adele", Genre: "Pop", Popularity: 88, Songs: []string{"Hello"}},
		{Name: "Kendrick Lamar", Genre: "Hip Hop", Popularity: 92, Songs: []string{"HUMBLE."}},
		{Name: "Radiohead", Genre: "Rock", Popularity: 80, Songs: []string{"Creep"}},
	}
	for i := range artists {
		artists[i].Normalize()
	}
	return artists
}

// MockCatalogStore is a test double for tasks.CatalogStore
type MockCatalogStore struct {
	mu           sync.Mutex
	Catalog      []models.Artist
	LoadErr      error
	NormalizeErr error
	Changed      int // value returned by the first NormalizeNames call
	Loads        int
	Normalizes   int
}

func (m *MockCatalogStore) LoadCatalog(ctx context.Context) ([]models.Artist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loads++
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Catalog, nil
}

func (m *MockCatalogStore) NormalizeNames(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Normalizes++
	if m.NormalizeErr != nil {
		return 0, m.NormalizeErr
	}
	changed := m.Changed
	m.Changed = 0
	return changed, nil
}

// MockArtistWriter is a test double for tasks.ArtistWriter that keeps artists in memory
type MockArtistWriter struct {
	Saved   map[string]models.Artist
	IDs     map[string]string
	SaveErr error
}

func NewMockArtistWriter() *MockArtistWriter {
	return &MockArtistWriter{Saved: map[string]models.Artist{}, IDs: map[string]string{}}
}

func (m *MockArtistWriter) SaveArtist(artist models.Artist, externalID string) (bool, error) {
	if m.SaveErr != nil {
		return false, m.SaveErr
	}
	key := shared.NormalizeName(artist.Name)
	_, exists := m.Saved[key]
	m.Saved[key] = artist
	if externalID != "" {
		m.IDs[key] = externalID
	}
	return !exists, nil
}

// MockArtistSource is a test double for [services.ArtistSource]
type MockArtistSource struct {
	Artists map[string]services.SourceArtist // keyed by normalized name
	Err     error
}

func (m *MockArtistSource) Name() string { return "mock" }

func (m *MockArtistSource) FetchArtist(ctx context.Context, name string) (*services.SourceArtist, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if found, ok := m.Artists[shared.NormalizeName(name)]; ok {
		return &found, nil
	}
	return nil, shared.ErrArtistNotFound
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/soundalike/internal/models"
	"github.com/desertthunder/soundalike/internal/shared"
)

// catalogColumns is the CSV header for catalog files. Only name is required.
var catalogColumns = []string{"name", "genre", "popularity", "songs"}

// ReadCatalogFile parses a .json or .csv catalog file.
func ReadCatalogFile(path string) ([]models.Artist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseCatalogJSON(f)
	case ".csv":
		return ParseCatalogCSV(f)
	default:
		return nil, fmt.Errorf("%w: %s (expected .json or .csv)", shared.ErrUnsupportedFile, filepath.Ext(path))
	}
}

// ParseCatalogJSON reads a JSON array of artist objects.
//
// Each object may use the legacy "song" field in place of "songs".
func ParseCatalogJSON(r io.Reader) ([]models.Artist, error) {
	var artists []models.Artist
	if err := json.NewDecoder(r).Decode(&artists); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON catalog: %v", shared.ErrInvalidInput, err)
	}
	return artists, nil
}

// ParseCatalogCSV reads a CSV catalog with a header row naming any of: name, genre, popularity, songs (or song).
//
// Songs are separated by ";". A blank popularity is 0.
func ParseCatalogCSV(r io.Reader) ([]models.Artist, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []models.Artist{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV header: %v", shared.ErrInvalidInput, err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "song" {
			h = "songs"
		}
		columns[h] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("%w: CSV catalog needs a name column", shared.ErrInvalidInput)
	}

	field := func(record []string, column string) string {
		i, ok := columns[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	artists := []models.Artist{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", shared.ErrInvalidInput, line, err)
		}

		artist := models.Artist{
			Name:  field(record, "name"),
			Genre: field(record, "genre"),
			Songs: splitSongs(field(record, "songs")),
		}

		if raw := field(record, "popularity"); raw != "" {
			pop, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: popularity %q is not a number", shared.ErrInvalidInput, line, raw)
			}
			artist.Popularity = int(pop)
		}

		artists = append(artists, artist)
	}

	return artists, nil
}

// CatalogToCSV writes artists in the format [ParseCatalogCSV] reads.
func CatalogToCSV(artists []models.Artist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(catalogColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range artists {
		record := []string{a.Name, a.Genre, strconv.Itoa(a.Popularity), strings.Join(a.Songs, ";")}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func splitSongs(s string) []string {
	songs := []string{}
	for _, song := range strings.Split(s, ";") {
		if song = strings.TrimSpace(song); song != "" {
			songs = append(songs, song)
		}
	}
	return songs
}

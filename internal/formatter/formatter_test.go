package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/desertthunder/soundalike/internal/models"
	"github.com/desertthunder/soundalike/internal/recommend"
	"github.com/desertthunder/soundalike/internal/shared"
	tu "github.com/desertthunder/soundalike/internal/testing"
)

func popResult(t *testing.T) recommend.Result {
	t.Helper()
	result := recommend.Recommend(recommend.NewSnapshot(tu.SampleCatalog()), []string{"Ed Sheeran"}, 2)
	if !result.OK() {
		t.Fatalf("expected recommendations, got %q", result.Message)
	}
	return result
}

func parseFragment(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"txt", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{" html ", FormatHTML, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidFlag) {
					t.Errorf("expected ErrInvalidFlag, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestToHTML(t *testing.T) {
	t.Run("recommendations", func(t *testing.T) {
		fragment, err := ToHTML(popResult(t))
		if err != nil {
			t.Fatalf("ToHTML failed: %v", err)
		}

		doc := parseFragment(t, string(fragment))
		entries := doc.Find("div.artist-recommendations > div.artist-entry")
		if entries.Length() != 2 {
			t.Fatalf("expected 2 entries, got %d", entries.Length())
		}

		first := doc.Find("div.artist-entry.artist-1 p.resPara")
		if first.Length() != 3 {
			t.Fatalf("expected 3 paragraphs, got %d", first.Length())
		}
		if got := first.Eq(0).Text(); got != "Artist: Ed Sheeran" {
			t.Errorf("unexpected artist line %q", got)
		}
		if got := first.Eq(1).Text(); got != "Popularity: 90" {
			t.Errorf("unexpected popularity line %q", got)
		}
		if got := first.Eq(2).Text(); got != "Songs: Shape of You, Perfect" {
			t.Errorf("unexpected songs line %q", got)
		}

		second := doc.Find("div.artist-entry.artist-2 p.resPara")
		if got := second.Eq(0).Text(); got != "Artist: Adele" {
			t.Errorf("unexpected artist line %q", got)
		}
		if got := second.Eq(2).Text(); got != "Song: Hello" {
			t.Errorf("single song should use the singular label, got %q", got)
		}
	})

	t.Run("no match", func(t *testing.T) {
		fragment, err := ToHTML(recommend.NoMatch())
		if err != nil {
			t.Fatalf("ToHTML failed: %v", err)
		}

		doc := parseFragment(t, string(fragment))
		if doc.Find("div.artist-entry").Length() != 0 {
			t.Error("no-match result should have no entries")
		}
		if got := doc.Find("p.error").Text(); got != recommend.NoMatchMessage {
			t.Errorf("expected no-match message, got %q", got)
		}
	})

	t.Run("escapes names", func(t *testing.T) {
		catalog := []models.Artist{{Name: "<b>Bold</b>", Genre: "Pop", Songs: []string{"a & b"}}}
		for i := range catalog {
			catalog[i].Normalize()
		}
		result := recommend.Recommend(recommend.NewSnapshot(catalog), []string{"<b>bold</b>"}, 1)

		fragment, err := ToHTML(result)
		if err != nil {
			t.Fatalf("ToHTML failed: %v", err)
		}
		if strings.Contains(string(fragment), "<b>") {
			t.Errorf("artist name should be escaped: %s", fragment)
		}
		if parseFragment(t, string(fragment)).Find("b").Length() != 0 {
			t.Error("escaped name should not produce elements")
		}
	})
}

func TestToJSON(t *testing.T) {
	t.Run("recommendations", func(t *testing.T) {
		data, err := ToJSON(popResult(t), Options{})
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}

		var body struct {
			Recommendations []map[string]any `json:"recommendations"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(body.Recommendations) != 2 {
			t.Fatalf("expected 2 recommendations, got %d", len(body.Recommendations))
		}
		first := body.Recommendations[0]
		if first["name"] != "Ed Sheeran" || first["popularity"] != float64(90) {
			t.Errorf("unexpected first entry %v", first)
		}
		if _, ok := first["score"]; ok {
			t.Error("score should be omitted without Scores")
		}
		if !strings.HasSuffix(string(data), "\n") {
			t.Error("expected trailing newline")
		}
	})

	t.Run("scores", func(t *testing.T) {
		data, err := ToJSON(popResult(t), Options{Scores: true})
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}
		if !strings.Contains(string(data), `"score": 1`) {
			t.Errorf("expected score field, got %s", data)
		}
	})

	t.Run("no match", func(t *testing.T) {
		data, err := ToJSON(recommend.NoMatch(), Options{})
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}

		var body ErrorBody
		if err := json.Unmarshal(data, &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if body.Error != recommend.NoMatchMessage {
			t.Errorf("unexpected error %q", body.Error)
		}
	})

	t.Run("empty songs encode as a list", func(t *testing.T) {
		catalog := []models.Artist{{Name: "Quiet", Genre: "Ambient"}}
		catalog[0].Normalize()
		result := recommend.Recommend(recommend.NewSnapshot(catalog), []string{"quiet"}, 1)

		data, err := ToJSON(result, Options{})
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}
		if !strings.Contains(string(data), `"songs": []`) {
			t.Errorf("expected empty songs list, got %s", data)
		}
	})
}

func TestToCSV(t *testing.T) {
	data, err := ToCSV(popResult(t), Options{Scores: true})
	if err != nil {
		t.Fatalf("ToCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "Name,Popularity,Songs,Score" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "Ed Sheeran,90,Shape of You; Perfect,1.0000" {
		t.Errorf("unexpected row %q", lines[1])
	}

	t.Run("no match", func(t *testing.T) {
		if _, err := ToCSV(recommend.NoMatch(), Options{}); !errors.Is(err, shared.ErrNoMatch) {
			t.Errorf("expected ErrNoMatch, got %v", err)
		}
	})
}

func TestToMarkdown(t *testing.T) {
	data, err := ToMarkdown(popResult(t), Options{})
	if err != nil {
		t.Fatalf("ToMarkdown failed: %v", err)
	}

	output := string(data)
	for _, want := range []string{
		"# Recommendations",
		"**Based on**: Ed Sheeran",
		"1. **Ed Sheeran** (popularity 90)",
		"   - Perfect",
		"2. **Adele** (popularity 88)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("markdown missing %q:\n%s", want, output)
		}
	}

	data, _ = ToMarkdown(recommend.NoMatch(), Options{})
	if !strings.Contains(string(data), "> "+recommend.NoMatchMessage) {
		t.Errorf("expected quoted no-match message, got %s", data)
	}
}

func TestToText(t *testing.T) {
	data, err := ToText(popResult(t), Options{})
	if err != nil {
		t.Fatalf("ToText failed: %v", err)
	}

	want := "1. Ed Sheeran (popularity 90)\n   Shape of You, Perfect\n2. Adele (popularity 88)\n   Hello\n"
	if string(data) != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, data)
	}

	data, _ = ToText(recommend.NoMatch(), Options{})
	if string(data) != recommend.NoMatchMessage+"\n" {
		t.Errorf("unexpected no-match text %q", data)
	}
}

func TestRender(t *testing.T) {
	result := popResult(t)
	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			data, err := Render(result, format, Options{})
			if err != nil {
				t.Fatalf("Render(%s) failed: %v", format, err)
			}
			if !strings.Contains(string(data), "Ed Sheeran") {
				t.Errorf("expected output to mention Ed Sheeran, got %s", data)
			}
		})
	}

	if _, err := Render(result, Format("yaml"), Options{}); !errors.Is(err, shared.ErrInvalidFlag) {
		t.Errorf("expected ErrInvalidFlag, got %v", err)
	}
}

func TestParseCatalogJSON(t *testing.T) {
	input := `[
		{"name": "Adele", "genre": "Pop", "popularity": 88, "songs": ["Hello"]},
		{"name": "Radiohead", "genre": "Rock", "popularity": 80.6, "song": "Creep"}
	]`

	artists, err := ParseCatalogJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCatalogJSON failed: %v", err)
	}
	if len(artists) != 2 {
		t.Fatalf("expected 2 artists, got %d", len(artists))
	}
	if artists[1].Popularity != 80 || len(artists[1].Songs) != 1 || artists[1].Songs[0] != "Creep" {
		t.Errorf("legacy song field not read: %+v", artists[1])
	}

	if _, err := ParseCatalogJSON(strings.NewReader(`{"name": "Adele"}`)); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for a non-array, got %v", err)
	}
}

func TestParseCatalogCSV(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		input := "Name,Genre,Popularity,Song\nAdele,Pop,88,Hello; Someone Like You\nRadiohead,Rock,,\n"

		artists, err := ParseCatalogCSV(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ParseCatalogCSV failed: %v", err)
		}
		if len(artists) != 2 {
			t.Fatalf("expected 2 artists, got %d", len(artists))
		}
		if got := artists[0].Songs; len(got) != 2 || got[1] != "Someone Like You" {
			t.Errorf("unexpected songs %v", got)
		}
		if artists[1].Popularity != 0 || len(artists[1].Songs) != 0 {
			t.Errorf("blank fields should be zero values: %+v", artists[1])
		}
	})

	tests := []struct {
		name  string
		input string
	}{
		{"missing name column", "genre,popularity\nPop,1\n"},
		{"bad popularity", "name,popularity\nAdele,high\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCatalogCSV(strings.NewReader(tt.input)); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	t.Run("empty input", func(t *testing.T) {
		artists, err := ParseCatalogCSV(strings.NewReader(""))
		if err != nil || len(artists) != 0 {
			t.Errorf("expected empty catalog, got %v, %v", artists, err)
		}
	})
}

func TestCatalogToCSV(t *testing.T) {
	data, err := CatalogToCSV(tu.SampleCatalog())
	if err != nil {
		t.Fatalf("CatalogToCSV failed: %v", err)
	}

	artists, err := ParseCatalogCSV(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("output should parse back: %v", err)
	}
	if len(artists) != 5 || artists[0].Name != "Ed Sheeran" || len(artists[0].Songs) != 2 {
		t.Errorf("unexpected parsed catalog %+v", artists)
	}
}

func TestReadCatalogFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "catalog.json")
	tu.MustWriteFile(t, jsonPath, `[{"name": "Drake", "genre": "Hip Hop", "popularity": 95}]`)
	csvPath := filepath.Join(dir, "catalog.CSV")
	tu.MustWriteFile(t, csvPath, "name,genre\nDrake,Hip Hop\n")
	txtPath := filepath.Join(dir, "catalog.txt")
	tu.MustWriteFile(t, txtPath, "Drake")

	for _, path := range []string{jsonPath, csvPath} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			artists, err := ReadCatalogFile(path)
			if err != nil {
				t.Fatalf("ReadCatalogFile failed: %v", err)
			}
			if len(artists) != 1 || artists[0].Genre != "Hip Hop" {
				t.Errorf("unexpected catalog %+v", artists)
			}
		})
	}

	if _, err := ReadCatalogFile(txtPath); !errors.Is(err, shared.ErrUnsupportedFile) {
		t.Errorf("expected ErrUnsupportedFile, got %v", err)
	}
	if _, err := ReadCatalogFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/soundalike/internal/models"
	"github.com/desertthunder/soundalike/internal/recommend"
	"github.com/desertthunder/soundalike/internal/services"
	"github.com/desertthunder/soundalike/internal/shared"
	tu "github.com/desertthunder/soundalike/internal/testing"
)

// testRunner returns a runner backed by a fresh SQLite file and the output buffer it writes to.
func testRunner(t *testing.T, source services.ArtistSource) (*Runner, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(dir, "test.db")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: filepath.Join(dir, "config.toml"),
		Logger:     shared.NewLogger(io.Discard),
		Output:     output,
		Source:     source,
	})
	return runner, output
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	return r.App().Run(context.Background(), append([]string{"soundalike"}, args...))
}

func mustRun(t *testing.T, r *Runner, args ...string) {
	t.Helper()
	if err := run(t, r, args...); err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	data, err := json.Marshal(tu.SampleCatalog())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "catalog.json")
	tu.MustWriteFile(t, path, string(data))
	return path
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			source := &tu.MockArtistSource{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				Source:     source,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.source != source {
				t.Error("expected source to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			if NewRunner(RunnerOpts{}).logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			if NewRunner(RunnerOpts{}).output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.writeJSON(map[string]int{"n": 1}, false)
			if output.String() != "{\"n\":1}\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("returns error on write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("returns error when newline fails", func(t *testing.T) {
			output := &bytes.Buffer{}
			limited := tu.NewLimitedWriter(1, 0, output)
			runner := NewRunner(RunnerOpts{Output: &limited})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline error, got %v", err)
			}
		})

		t.Run("returns error on marshal failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			if err := runner.writeJSON(make(chan int), false); err == nil {
				t.Error("expected marshal error")
			}
		})
	})
}

func TestConfigLoading(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "custom.toml")
	tu.MustWriteFile(t, configPath, `
[database]
path = "`+filepath.ToSlash(filepath.Join(dir, "custom.db"))+`"

[recommender]
top_n = 1
`)

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})

	mustRun(t, runner, "--config", configPath, "catalog", "import", writeCatalog(t))
	mustRun(t, runner, "-c", configPath, "recommend", "Drake")

	if runner.config.Recommender.TopN != 1 {
		t.Errorf("expected top_n from file, got %d", runner.config.Recommender.TopN)
	}
	if !strings.Contains(output.String(), "1. Drake") || strings.Contains(output.String(), "2. ") {
		t.Errorf("expected a single recommendation, got:\n%s", output.String())
	}
	tu.AssertFileExists(t, filepath.Join(dir, "custom.db"))

	t.Run("invalid file", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.toml")
		tu.MustWriteFile(t, bad, "[recommender]\ntop_n = 0\n")

		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
		if err := run(t, runner, "-c", bad, "catalog", "genres"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestSetupDatabase(t *testing.T) {
	// the config template uses a relative database path
	t.Chdir(t.TempDir())

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})

	mustRun(t, runner, "setup", "database")

	tu.AssertFileExists(t, "config.toml")
	tu.AssertFileExists(t, "soundalike.db")
	if !strings.Contains(output.String(), "Database ready") {
		t.Errorf("unexpected output %q", output.String())
	}
	if !strings.Contains(tu.MustReadFile(t, runner.configPath), "[recommender]") {
		t.Error("expected config template to be written")
	}
}

func TestCatalogCommands(t *testing.T) {
	runner, output := testRunner(t, nil)

	mustRun(t, runner, "catalog", "import", writeCatalog(t))
	if !strings.Contains(output.String(), "Imported 5 artists (created 5, updated 0, skipped 0)") {
		t.Fatalf("unexpected import output %q", output.String())
	}

	t.Run("list", func(t *testing.T) {
		output.Reset()
		mustRun(t, runner, "catalog", "list", "--genre", "Hip Hop")

		out := output.String()
		if !strings.Contains(out, "Drake") || !strings.Contains(out, "Kendrick Lamar") || strings.Contains(out, "Adele") {
			t.Errorf("unexpected list output:\n%s", out)
		}
	})

	t.Run("list json", func(t *testing.T) {
		output.Reset()
		mustRun(t, runner, "catalog", "list", "--format", "json")

		var artists []models.Artist
		if err := json.Unmarshal(output.Bytes(), &artists); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(artists) != 5 || artists[0].Name != "Ed Sheeran" {
			t.Errorf("expected catalog order, got %+v", artists)
		}
	})

	t.Run("add and genres", func(t *testing.T) {
		output.Reset()
		mustRun(t, runner, "catalog", "add", "--name", "billie eilish", "--genre", "Pop", "--popularity", "91", "--song", "bad guy")
		if !strings.Contains(output.String(), "Added billie eilish (Pop)") {
			t.Errorf("unexpected add output %q", output.String())
		}

		output.Reset()
		mustRun(t, runner, "catalog", "genres")
		out := output.String()
		if !strings.Contains(out, "3 genres") || !strings.Contains(out, "Pop") || !strings.Contains(out, "3\n") {
			t.Errorf("unexpected genres output:\n%s", out)
		}
	})

	t.Run("remove", func(t *testing.T) {
		output.Reset()
		mustRun(t, runner, "catalog", "remove", "radiohead")
		if !strings.Contains(output.String(), "Removed Radiohead") {
			t.Errorf("unexpected remove output %q", output.String())
		}

		if err := run(t, runner, "catalog", "remove", "radiohead"); !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected ErrArtistNotFound, got %v", err)
		}
	})

	t.Run("normalize", func(t *testing.T) {
		output.Reset()
		mustRun(t, runner, "catalog", "normalize")
		if !strings.Contains(output.String(), "Normalized 0 artist names") {
			t.Errorf("expected an already normalized catalog, got %q", output.String())
		}
	})

	t.Run("import errors", func(t *testing.T) {
		if err := run(t, runner, "catalog", "import"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}

		txt := filepath.Join(t.TempDir(), "catalog.txt")
		tu.MustWriteFile(t, txt, "Drake")
		if err := run(t, runner, "catalog", "import", txt); !errors.Is(err, shared.ErrUnsupportedFile) {
			t.Errorf("expected ErrUnsupportedFile, got %v", err)
		}
	})
}

func TestCatalogSync(t *testing.T) {
	source := &tu.MockArtistSource{Artists: map[string]services.SourceArtist{
		"Drake": {
			Artist:     models.Artist{Name: "Drake", Genre: "Hip Hop", Popularity: 95, Songs: []string{"God's Plan"}},
			ExternalID: "3TVXtAsR1Inumwj472S9r4",
		},
	}}
	runner, output := testRunner(t, source)

	mustRun(t, runner, "catalog", "sync", "--artist", "drake", "--artist", "Nobody")

	out := output.String()
	if !strings.Contains(out, "Synced 1 artists (created 1, updated 0, skipped 1)") {
		t.Errorf("unexpected sync output:\n%s", out)
	}
	if !strings.Contains(out, "Nobody: not found") {
		t.Errorf("expected missing artist to be reported:\n%s", out)
	}

	repo, closeDB, err := runner.openRepository()
	if err != nil {
		t.Fatal(err)
	}
	defer closeDB()

	artist, err := repo.GetBySpotifyID("3TVXtAsR1Inumwj472S9r4")
	if err != nil {
		t.Fatalf("expected synced artist to be stored: %v", err)
	}
	if artist.Name() != "Drake" {
		t.Errorf("unexpected artist %q", artist.Name())
	}

	t.Run("no credentials", func(t *testing.T) {
		runner, _ := testRunner(t, nil)
		runner.config.Credentials.Spotify = shared.SpotifyConfig{}

		if err := run(t, runner, "catalog", "sync", "--artist", "Drake"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestRecommend(t *testing.T) {
	runner, output := testRunner(t, nil)
	mustRun(t, runner, "catalog", "import", writeCatalog(t))

	tests := []struct {
		name string
		args []string
		want []string
		not  []string
	}{
		{
			name: "text",
			args: []string{"recommend", "--top-n", "2", "ed sheeran"},
			want: []string{"1. Ed Sheeran (popularity 90)", "2. Adele (popularity 88)"},
			not:  []string{"3. "},
		},
		{
			name: "comma separated argument",
			args: []string{"recommend", "--top-n", "2", "--exclude-input", "Drake, Ed Sheeran"},
			want: []string{"1. Adele", "2. Kendrick Lamar"},
		},
		{
			name: "json with scores",
			args: []string{"recommend", "--format", "json", "--scores", "--top-n", "1", "Radiohead"},
			want: []string{`"name": "Radiohead"`, `"score": 1`},
		},
		{
			name: "html",
			args: []string{"recommend", "-f", "html", "-n", "1", "Adele"},
			want: []string{`<div class="artist-entry artist-1">`, "Artist:</strong> Ed Sheeran"},
		},
		{
			name: "no match",
			args: []string{"recommend", "Nonexistent Artist"},
			want: []string{recommend.NoMatchMessage},
		},
		{
			name: "no match csv",
			args: []string{"recommend", "--format", "csv", "Nobody"},
			want: []string{recommend.NoMatchMessage},
			not:  []string{"Name,Popularity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output.Reset()
			mustRun(t, runner, tt.args...)

			out := output.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in output:\n%s", want, out)
				}
			}
			for _, not := range tt.not {
				if strings.Contains(out, not) {
					t.Errorf("did not expect %q in output:\n%s", not, out)
				}
			}
		})
	}

	t.Run("argument errors", func(t *testing.T) {
		if err := run(t, runner, "recommend"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := run(t, runner, "recommend", "--format", "yaml", "Drake"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
		if err := run(t, runner, "recommend", "--top-n", "0", "Drake"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

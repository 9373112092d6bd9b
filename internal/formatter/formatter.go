// package formatter renders recommendation results (JSON, CSV, Markdown, plain text, HTML) and parses catalog files
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/desertthunder/soundalike/internal/models"
	"github.com/desertthunder/soundalike/internal/recommend"
	"github.com/desertthunder/soundalike/internal/shared"
)

// Format names an output encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// Formats lists the accepted --format values.
var Formats = []Format{FormatText, FormatJSON, FormatCSV, FormatMarkdown, FormatHTML}

// ParseFormat accepts a format name or a common alias ("markdown", "txt").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Options control optional output.
type Options struct {
	Scores bool // include similarity scores where the format allows
}

// Render encodes result in format.
func Render(result recommend.Result, format Format, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ToJSON(result, opts)
	case FormatCSV:
		return ToCSV(result, opts)
	case FormatMarkdown:
		return ToMarkdown(result, opts)
	case FormatHTML:
		fragment, err := ToHTML(result)
		return []byte(fragment), err
	case FormatText, "":
		return ToText(result, opts)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// ResponseBody is the JSON shape of a successful result.
type ResponseBody struct {
	Recommendations []Entry `json:"recommendations"`
}

// ErrorBody is the JSON shape of a no-match result or a failed request.
type ErrorBody struct {
	Error string `json:"error"`
}

// Entry is one recommendation in JSON output.
type Entry struct {
	models.Recommendation
	Score *float64 `json:"score,omitempty"`
}

// NewResponseBody builds the JSON body for result: a [ResponseBody], or an [ErrorBody] for a no-match.
func NewResponseBody(result recommend.Result, opts Options) any {
	if !result.OK() {
		return ErrorBody{Error: result.Message}
	}

	entries := make([]Entry, len(result.Recommendations))
	for i, rec := range result.Recommendations {
		if rec.Songs == nil {
			rec.Songs = []string{}
		}
		entries[i] = Entry{Recommendation: rec}
		if opts.Scores && i < len(result.Ranked) {
			score := result.Ranked[i].Score
			entries[i].Score = &score
		}
	}
	return ResponseBody{Recommendations: entries}
}

// ToJSON encodes result as an indented {"recommendations": [...]} or {"error": "..."} object.
func ToJSON(result recommend.Result, opts Options) ([]byte, error) {
	data, err := json.MarshalIndent(NewResponseBody(result, opts), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ToCSV converts recommendations to CSV with columns: Name, Popularity, Songs (and Score with opts.Scores).
//
// Songs are joined with "; ". A no-match result is an error since CSV has nowhere to put the message.
func ToCSV(result recommend.Result, opts Options) ([]byte, error) {
	if err := result.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Name", "Popularity", "Songs"}
	if opts.Scores {
		headers = append(headers, "Score")
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, rec := range result.Recommendations {
		record := []string{
			rec.Name,
			strconv.Itoa(rec.Popularity),
			strings.Join(rec.Songs, "; "),
		}
		if opts.Scores {
			record = append(record, formatScore(result, i))
		}
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

// ToMarkdown converts a result to a Markdown list.
func ToMarkdown(result recommend.Result, opts Options) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Recommendations\n\n")

	if !result.OK() {
		fmt.Fprintf(&buf, "> %s\n", result.Message)
		return buf.Bytes(), nil
	}

	if len(result.Matched) > 0 {
		fmt.Fprintf(&buf, "**Based on**: %s\n\n", strings.Join(result.Matched, ", "))
	}

	for i, rec := range result.Recommendations {
		fmt.Fprintf(&buf, "%d. **%s** (popularity %d)", i+1, rec.Name, rec.Popularity)
		if opts.Scores {
			fmt.Fprintf(&buf, " [score %s]", formatScore(result, i))
		}
		buf.WriteString("\n")
		for _, song := range rec.Songs {
			fmt.Fprintf(&buf, "   - %s\n", song)
		}
	}

	return buf.Bytes(), nil
}

// ToText converts a result to plain text.
func ToText(result recommend.Result, opts Options) ([]byte, error) {
	var buf bytes.Buffer

	if !result.OK() {
		buf.WriteString(result.Message + "\n")
		return buf.Bytes(), nil
	}

	for i, rec := range result.Recommendations {
		fmt.Fprintf(&buf, "%d. %s (popularity %d)", i+1, rec.Name, rec.Popularity)
		if opts.Scores {
			fmt.Fprintf(&buf, " score=%s", formatScore(result, i))
		}
		buf.WriteString("\n")
		if len(rec.Songs) > 0 {
			fmt.Fprintf(&buf, "   %s\n", strings.Join(rec.Songs, ", "))
		}
	}

	return buf.Bytes(), nil
}

var fragmentTemplate = template.Must(template.New("fragment").Funcs(template.FuncMap{
	"inc":  func(i int) int { return i + 1 },
	"join": strings.Join,
}).Parse(
	`{{if .Error}}<p class="error">{{.Error}}</p>{{else}}<div class="artist-recommendations">
{{- range $i, $rec := .Recommendations}}
<div class="artist-entry artist-{{inc $i}}">
<p class="resPara"><strong>Artist:</strong> {{$rec.Name}}</p>
<p class="resPara"><strong>Popularity:</strong> {{$rec.Popularity}}</p>
<p class="resPara"><strong>{{if gt (len $rec.Songs) 1}}Songs{{else}}Song{{end}}:</strong> {{join $rec.Songs ", "}}</p>
</div>
{{- end}}
</div>{{end}}`,
))

// ToHTML renders result as the recommendations fragment embedded in the web page.
//
// Each recommendation is a div.artist-entry.artist-N holding three p.resPara lines;
// a no-match result is a single p.error.
func ToHTML(result recommend.Result) (template.HTML, error) {
	var buf bytes.Buffer

	data := struct {
		Error           string
		Recommendations []models.Recommendation
	}{Recommendations: result.Recommendations}
	if !result.OK() {
		data.Error = result.Message
	}

	if err := fragmentTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}

	return template.HTML(buf.String()), nil
}

func formatScore(result recommend.Result, i int) string {
	if i >= len(result.Ranked) {
		return ""
	}
	return strconv.FormatFloat(result.Ranked[i].Score, 'f', 4, 64)
}

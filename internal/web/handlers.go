package web

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/soundalike/internal/formatter"
	"github.com/desertthunder/soundalike/internal/recommend"
	"github.com/desertthunder/soundalike/internal/shared"
)

const unavailableMessage = "The artist catalog is unavailable, try again later."

// PageHandler serves the HTML form.
type PageHandler struct {
	engine Recommender
	logger *log.Logger
}

func NewPageHandler(engine Recommender, logger *log.Logger) *PageHandler {
	return &PageHandler{engine: engine, logger: logger}
}

func (h *PageHandler) Routes() []string {
	return []string{"GET /{$}", "POST /{$}"}
}

type pageData struct {
	Input  string
	TopN   int
	Output template.HTML
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	opts := h.engine.Defaults()
	if opts.TopN <= 0 {
		opts.TopN = recommend.DefaultTopN
	}
	data := pageData{TopN: opts.TopN}

	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, data)
		return
	}

	if err := r.ParseForm(); err != nil {
		data.Output = errorFragment("Could not read the form.")
		h.render(w, r, http.StatusBadRequest, data)
		return
	}

	data.Input = strings.TrimSpace(r.PostForm.Get("user_input"))
	if data.Input == "" {
		h.render(w, r, http.StatusOK, data)
		return
	}

	if raw := r.PostForm.Get("top_n"); raw != "" {
		n, err := parseTopN(raw)
		if err != nil {
			data.Output = errorFragment(err.Error())
			h.render(w, r, http.StatusBadRequest, data)
			return
		}
		opts.TopN = n
		data.TopN = n
	}

	result, err := h.engine.RecommendWith(r.Context(), []string{data.Input}, opts)
	if err != nil {
		h.logger.Error("recommendation failed", "input", data.Input, "error", err)
		data.Output = errorFragment(unavailableMessage)
		h.render(w, r, http.StatusServiceUnavailable, data)
		return
	}

	fragment, err := formatter.ToHTML(*result)
	if err != nil {
		h.logger.Error("failed to render recommendations", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	data.Output = fragment
	h.render(w, r, http.StatusOK, data)
}

// render writes the full page, or only the output fragment for HTMX requests.
func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if r.Header.Get("HX-Request") == "true" {
		w.WriteHeader(status)
		fmt.Fprint(w, data.Output)
		return
	}

	var buf strings.Builder
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("failed to render page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	fmt.Fprint(w, buf.String())
}

func errorFragment(message string) template.HTML {
	return template.HTML(`<p class="error">` + template.HTMLEscapeString(message) + `</p>`)
}

// APIHandler serves recommendations as JSON.
type APIHandler struct {
	engine Recommender
	logger *log.Logger
}

func NewAPIHandler(engine Recommender, logger *log.Logger) *APIHandler {
	return &APIHandler{engine: engine, logger: logger}
}

func (h *APIHandler) Routes() []string {
	return []string{"GET /api/recommendations"}
}

// ServeHTTP answers GET /api/recommendations.
//
// Query parameters: artist (repeatable, required), top_n, popularity, exclude_input, scores.
// A no-match result is a 404 with an error body and a store failure is a 503.
func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var artists []string
	for _, a := range query["artist"] {
		if a = strings.TrimSpace(a); a != "" {
			artists = append(artists, a)
		}
	}
	if len(artists) == 0 {
		writeJSON(w, http.StatusBadRequest, formatter.ErrorBody{Error: "at least one artist parameter is required"})
		return
	}

	opts := h.engine.Defaults()
	var format formatter.Options
	var err error

	if raw := query.Get("top_n"); raw != "" {
		if opts.TopN, err = parseTopN(raw); err != nil {
			writeJSON(w, http.StatusBadRequest, formatter.ErrorBody{Error: err.Error()})
			return
		}
	}
	for name, target := range map[string]*bool{
		"popularity":    &opts.IncludePopularity,
		"exclude_input": &opts.ExcludeInput,
		"scores":        &format.Scores,
	} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		if *target, err = strconv.ParseBool(raw); err != nil {
			writeJSON(w, http.StatusBadRequest, formatter.ErrorBody{Error: fmt.Sprintf("%s must be a boolean", name)})
			return
		}
	}

	result, err := h.engine.RecommendWith(r.Context(), artists, opts)
	if err != nil {
		h.logger.Error("recommendation failed", "artists", artists, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, formatter.ErrorBody{Error: unavailableMessage})
		return
	}

	status := http.StatusOK
	if result.Kind == recommend.ResultNoMatch {
		status = http.StatusNotFound
	}
	writeJSON(w, status, formatter.NewResponseBody(*result, format))
}

// HealthHandler answers liveness probes.
type HealthHandler struct{}

func (HealthHandler) Routes() []string { return []string{"GET /healthz"} }

func (HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func parseTopN(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: top_n must be a positive integer", shared.ErrInvalidArgument)
	}
	return n, nil
}

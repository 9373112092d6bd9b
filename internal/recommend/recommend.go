package recommend

import (
	"sort"
	"strings"

	"github.com/desertthunder/soundalike/internal/models"
	"github.com/desertthunder/soundalike/internal/shared"
)

// DefaultTopN is used when a caller asks for zero or fewer recommendations.
const DefaultTopN = 5

// NoMatchMessage is the message carried by a [ResultNoMatch] result.
const NoMatchMessage = "None of the artists in the user's input were found."

// Snapshot is a loaded catalog paired with the vocabulary its vectors are built over.
type Snapshot struct {
	artists       []models.Artist
	vocab         Vocabulary
	maxPopularity int
}

// NewSnapshot wraps catalog with a vocabulary derived from its own genres.
func NewSnapshot(catalog []models.Artist) *Snapshot {
	return newSnapshot(catalog, VocabularyOf(catalog))
}

// NewSnapshotWithVocabulary wraps catalog with a pinned vocabulary so vectors stay comparable
// across loads. Genres outside vocab are encoded in the [shared.UnknownGenre] slot, which is added
// to vocab if it is missing.
func NewSnapshotWithVocabulary(catalog []models.Artist, vocab Vocabulary) *Snapshot {
	return newSnapshot(catalog, vocab.With(shared.UnknownGenre))
}

func newSnapshot(catalog []models.Artist, vocab Vocabulary) *Snapshot {
	s := &Snapshot{artists: catalog, vocab: vocab}
	for _, a := range catalog {
		s.maxPopularity = max(s.maxPopularity, a.Popularity)
	}
	return s
}

// Artists returns the catalog in load order.
func (s *Snapshot) Artists() []models.Artist { return s.artists }

// Vocabulary returns the vocabulary vectors are built over.
func (s *Snapshot) Vocabulary() Vocabulary { return s.vocab }

// Len is the number of catalog records.
func (s *Snapshot) Len() int { return len(s.artists) }

// Vectors encodes every record. With includePopularity one more dimension holds
// popularity / max popularity for the snapshot.
func (s *Snapshot) Vectors(includePopularity bool) []Vector {
	vectors := make([]Vector, len(s.artists))
	for i, a := range s.artists {
		vec := s.vocab.Encode(a.Genre)
		if includePopularity {
			var pop float64
			if s.maxPopularity > 0 {
				pop = float64(a.Popularity) / float64(s.maxPopularity)
			}
			vec = append(vec, pop)
		}
		vectors[i] = vec
	}
	return vectors
}

// Options tune a recommendation call.
type Options struct {
	TopN              int
	IncludePopularity bool
	ExcludeInput      bool // drop the matched preferred artists from the results
}

// ResultKind tags a [Result].
type ResultKind int

const (
	ResultOK ResultKind = iota
	ResultNoMatch
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultNoMatch:
		return "no_match"
	default:
		return "unknown"
	}
}

// Ranked is a scored catalog record.
type Ranked struct {
	Artist   models.Artist
	Score    float64
	Position int // index in the snapshot
}

// Recommendation projects the record to its caller-facing fields.
func (r Ranked) Recommendation() models.Recommendation {
	return models.Recommendation{
		Name:       r.Artist.Name,
		Popularity: r.Artist.Popularity,
		Songs:      r.Artist.Songs,
	}
}

// Result is either a ranked list or a no-match message.
type Result struct {
	Kind            ResultKind
	Recommendations []models.Recommendation
	Ranked          []Ranked
	Matched         []string // display names of the catalog records the input matched
	Message         string
}

// OK reports whether the result holds recommendations.
func (r Result) OK() bool { return r.Kind == ResultOK }

// Err returns [shared.ErrNoMatch] for a no-match result and nil otherwise.
func (r Result) Err() error {
	if r.Kind == ResultNoMatch {
		return shared.ErrNoMatch
	}
	return nil
}

// NoMatch builds the result returned when no preferred artist is in the catalog.
func NoMatch() Result {
	return Result{Kind: ResultNoMatch, Message: NoMatchMessage}
}

// Recommend ranks the snapshot against preferred with default options and the given topN.
func Recommend(s *Snapshot, preferred []string, topN int) Result {
	return RecommendWith(s, preferred, Options{TopN: topN})
}

// RecommendWith ranks every record in s by cosine similarity to the mean genre vector of the
// records whose normalized name matches one of preferred, and returns the first opts.TopN.
func RecommendWith(s *Snapshot, preferred []string, opts Options) Result {
	if s == nil {
		return NoMatch()
	}

	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	wanted := preferredSet(preferred)
	if len(wanted) == 0 {
		return NoMatch()
	}

	vectors := s.Vectors(opts.IncludePopularity)

	var matched []Vector
	var names []string
	isMatch := make([]bool, len(s.artists))
	for i, a := range s.artists {
		if _, ok := wanted[a.NormalizedName]; ok {
			isMatch[i] = true
			matched = append(matched, vectors[i])
			names = append(names, a.Name)
		}
	}
	if len(matched) == 0 {
		return NoMatch()
	}

	profile := Mean(matched)

	ranked := make([]Ranked, 0, len(s.artists))
	for i, a := range s.artists {
		if opts.ExcludeInput && isMatch[i] {
			continue
		}
		ranked = append(ranked, Ranked{Artist: a, Score: Cosine(profile, vectors[i]), Position: i})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	recs := make([]models.Recommendation, len(ranked))
	for i, r := range ranked {
		recs[i] = r.Recommendation()
	}

	return Result{Kind: ResultOK, Recommendations: recs, Ranked: ranked, Matched: names}
}

// SplitNames splits comma-separated free text into artist names, dropping blanks.
func SplitNames(input string) []string {
	var names []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

func preferredSet(preferred []string) map[string]struct{} {
	set := make(map[string]struct{}, len(preferred))
	for _, name := range preferred {
		if n := shared.NormalizeName(name); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

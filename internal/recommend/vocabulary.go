package recommend

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"

	"github.com/desertthunder/soundalike/internal/models"
	"github.com/desertthunder/soundalike/internal/shared"
)

// Vocabulary is the sorted, de-duplicated list of genres that defines vector dimensions.
type Vocabulary struct {
	genres  []string
	index   map[string]int
	version string
}

// NewVocabulary builds a vocabulary from genre labels. Blank labels become [shared.UnknownGenre].
func NewVocabulary(genres []string) Vocabulary {
	seen := make(map[string]struct{}, len(genres))
	entries := make([]string, 0, len(genres))
	for _, g := range genres {
		g = shared.NormalizeGenre(g)
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		entries = append(entries, g)
	}
	slices.Sort(entries)

	index := make(map[string]int, len(entries))
	for i, g := range entries {
		index[g] = i
	}

	sum := sha256.Sum256([]byte(strings.Join(entries, "\x00")))
	return Vocabulary{genres: entries, index: index, version: hex.EncodeToString(sum[:6])}
}

// VocabularyOf collects the genres present in catalog.
func VocabularyOf(catalog []models.Artist) Vocabulary {
	genres := make([]string, len(catalog))
	for i, a := range catalog {
		genres[i] = a.Genre
	}
	return NewVocabulary(genres)
}

// Genres returns a copy of the vocabulary entries in dimension order.
func (v Vocabulary) Genres() []string { return slices.Clone(v.genres) }

// Len is the number of dimensions.
func (v Vocabulary) Len() int { return len(v.genres) }

// Version identifies the entry set; equal versions produce comparable vectors.
func (v Vocabulary) Version() string { return v.version }

// Index returns the dimension of genre.
func (v Vocabulary) Index(genre string) (int, bool) {
	i, ok := v.index[shared.NormalizeGenre(genre)]
	return i, ok
}

// Contains reports whether genre has its own dimension.
func (v Vocabulary) Contains(genre string) bool {
	_, ok := v.Index(genre)
	return ok
}

// With returns a vocabulary that also holds genre.
func (v Vocabulary) With(genre string) Vocabulary {
	if v.Contains(genre) {
		return v
	}
	return NewVocabulary(append(v.Genres(), genre))
}

// Encode returns the one-hot vector for genre.
//
// Genres outside the vocabulary fall into the [shared.UnknownGenre] slot when there is one,
// and encode as the zero vector otherwise.
func (v Vocabulary) Encode(genre string) Vector {
	vec := make(Vector, len(v.genres))
	i, ok := v.Index(genre)
	if !ok {
		i, ok = v.index[shared.UnknownGenre]
	}
	if ok {
		vec[i] = 1
	}
	return vec
}

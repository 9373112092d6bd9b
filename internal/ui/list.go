package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/soundalike/internal/recommend"
)

var (
	_ list.Item = recommendationItem{}
)

// recommendationItem wraps [recommend.Ranked] to implement [list.Item].
type recommendationItem struct {
	rank   int
	ranked recommend.Ranked
}

func (i recommendationItem) FilterValue() string { return i.ranked.Artist.Name }
func (i recommendationItem) Title() string {
	return fmt.Sprintf("%d. %s", i.rank, i.ranked.Artist.Name)
}
func (i recommendationItem) Description() string {
	desc := fmt.Sprintf("%s • popularity %d • score %.3f", i.ranked.Artist.Genre, i.ranked.Artist.Popularity, i.ranked.Score)
	if len(i.ranked.Artist.Songs) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.ranked.Artist.Songs, ", "))
	}
	return desc
}

func recommendationItems(result *recommend.Result) []list.Item {
	items := make([]list.Item, len(result.Ranked))
	for i, r := range result.Ranked {
		items[i] = recommendationItem{rank: i + 1, ranked: r}
	}
	return items
}

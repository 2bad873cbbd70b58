package game

import (
	"strings"

	"github.com/robalobadob/spordle/internal/song"
)

// MinSubstringQuery is the shortest query that may match by substring.
const MinSubstringQuery = 2

// Resolve picks the catalog entry a typed title refers to.
//
// Matching is case-insensitive on song.TitleKey. An exact key match always
// beats a substring match; within the same class the most recently added
// song wins (CreatedAt, then ID, both descending).
func Resolve(query string, candidates []song.Song) (song.Song, bool) {
	q := song.TitleKey(query)
	if q == "" {
		return song.Song{}, false
	}

	var best song.Song
	bestRank := 0 // 0 = none, 1 = substring, 2 = exact
	for _, c := range candidates {
		key := song.TitleKey(c.Title)
		rank := 0
		switch {
		case key == q:
			rank = 2
		case len([]rune(q)) >= MinSubstringQuery && strings.Contains(key, q):
			rank = 1
		}
		if rank == 0 {
			continue
		}
		if rank > bestRank || (rank == bestRank && newer(c, best)) {
			best, bestRank = c, rank
		}
	}
	return best, bestRank > 0
}

// newer reports whether a was added after b.
func newer(a, b song.Song) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

package catalog

import (
	"context"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/spordle/internal/song"
)

// seedSong is the on-disk shape of a sample catalog entry. Length uses the
// "m:ss" form the admin form accepts.
type seedSong struct {
	Title   string    `json:"title"`
	Artists []string  `json:"artists"`
	Year    int       `json:"year"`
	Genres  []string  `json:"genres"`
	Types   []string  `json:"types"`
	Length  string    `json:"length"`
	Hints   [3]string `json:"hints"`
	Cover   string    `json:"cover"`
	Audio   string    `json:"audio"`
}

func (s seedSong) toSong() (song.Song, error) {
	length, err := song.ParseLength(s.Length)
	if err != nil {
		return song.Song{}, fmt.Errorf("%s: %w", s.Title, err)
	}
	types := make([]song.Kind, 0, len(s.Types))
	for _, t := range s.Types {
		k, err := song.ParseKind(t)
		if err != nil {
			return song.Song{}, fmt.Errorf("%s: %w", s.Title, err)
		}
		types = append(types, k)
	}
	return song.Song{
		Title:    s.Title,
		Artists:  s.Artists,
		Year:     s.Year,
		Genres:   s.Genres,
		Types:    types,
		Length:   length,
		Hints:    s.Hints,
		CoverRef: s.Cover,
		AudioRef: s.Audio,
	}, nil
}

// Seed inserts the songs read from r when cat is empty. It returns the number
// of songs inserted; a non-empty catalog is left untouched.
func Seed(ctx context.Context, cat Catalog, r io.Reader) (int, error) {
	n, err := cat.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	var in []seedSong
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return 0, fmt.Errorf("decode seed: %w", err)
	}
	inserted := 0
	for _, ss := range in {
		s, err := ss.toSong()
		if err != nil {
			return inserted, err
		}
		if _, err := cat.Create(ctx, s); err != nil {
			return inserted, fmt.Errorf("seed %q: %w", ss.Title, err)
		}
		inserted++
	}
	log.Info().Int("songs", inserted).Msg("seeded catalog")
	return inserted, nil
}

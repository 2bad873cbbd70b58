// Package catalog stores the songs that can be targets or guesses.
package catalog

import (
	"context"
	"errors"

	"github.com/robalobadob/spordle/internal/song"
)

// ErrNotFound is returned when no song has the requested id.
var ErrNotFound = errors.New("song not found")

// ErrDuplicateTitle is returned when another song already has the same
// normalized title.
var ErrDuplicateTitle = errors.New("a song with this title already exists")

// Catalog is the song store consumed by the round controller and the admin API.
type Catalog interface {
	// Get returns the song with the given id.
	Get(ctx context.Context, id int64) (song.Song, error)

	// Search returns songs whose normalized title contains the normalized
	// query, most recently added first. limit <= 0 means no limit.
	Search(ctx context.Context, query string, limit int) ([]song.Song, error)

	// Titles returns id/title pairs ordered by title.
	Titles(ctx context.Context) ([]song.Title, error)

	// IDs returns every song id in ascending order.
	IDs(ctx context.Context) ([]int64, error)

	// List returns every song, newest first.
	List(ctx context.Context) ([]song.Song, error)

	// Count returns the number of songs.
	Count(ctx context.Context) (int, error)

	// Create validates and inserts s, returning it with ID and CreatedAt set.
	Create(ctx context.Context, s song.Song) (song.Song, error)

	// Update validates and replaces the song with s.ID.
	Update(ctx context.Context, s song.Song) (song.Song, error)

	// Delete removes the song with the given id.
	Delete(ctx context.Context, id int64) error
}

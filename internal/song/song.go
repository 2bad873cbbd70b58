// internal/song/song.go
//
// Song record shared by the catalog, the scoring engine and the HTTP layer.
// Defines:
//   - Kind: release type enum (Album/EP/Single).
//   - Song: a catalog entry with its guessable attributes, hint texts and asset refs.
//   - Title: id/title projection used for autocomplete.

package song

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Kind is the release type of a song. Only the three values below are valid.
type Kind string

const (
	KindAlbum  Kind = "Album"
	KindEP     Kind = "EP"
	KindSingle Kind = "Single"
)

// Kinds lists the valid release types in display order.
var Kinds = []Kind{KindAlbum, KindEP, KindSingle}

var ErrInvalidKind = errors.New("song: type must be Album, EP or Single")

// Valid reports whether k is exactly one of Kinds.
func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if k == v {
			return true
		}
	}
	return false
}

// ParseKind maps a case-insensitive name onto a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(strings.TrimSpace(s), string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Song holds the guessable attributes of a catalog entry.
type Song struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Artists   []string  `json:"artists"`
	Year      int       `json:"year"`
	Genres    []string  `json:"genres"`
	Types     []Kind    `json:"types"`
	Length    int       `json:"length"`    // whole seconds
	Hints     [3]string `json:"hints"`     // tier texts, index 0 = tier 1
	CoverRef  string    `json:"coverRef"`  // asset ref, may be empty
	AudioRef  string    `json:"audioRef"`  // asset ref, may be empty
	CreatedAt time.Time `json:"createdAt"`
}

// Title is the projection returned to autocomplete clients.
type Title struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// HasCover reports whether a cover asset is attached.
func (s Song) HasCover() bool { return s.CoverRef != "" }

// HasAudio reports whether an audio asset is attached.
func (s Song) HasAudio() bool { return s.AudioRef != "" }

// TypeNames returns Types as plain strings.
func (s Song) TypeNames() []string {
	out := make([]string, len(s.Types))
	for i, k := range s.Types {
		out[i] = string(k)
	}
	return out
}

// TitleKey normalizes a title for matching: trimmed, lower-cased and with
// runs of whitespace collapsed to a single space.
func TitleKey(title string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(title), unicode.IsSpace), " ")
}

var ErrInvalidLength = errors.New("song: length must look like m:ss")

// ParseLength converts "m:ss" (or a plain number of seconds) into seconds.
func ParseLength(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidLength
	}
	min, sec, found := strings.Cut(s, ":")
	if !found {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, ErrInvalidLength
		}
		return n, nil
	}
	m, err := strconv.Atoi(min)
	if err != nil || m < 0 {
		return 0, ErrInvalidLength
	}
	if len(sec) != 2 {
		return 0, ErrInvalidLength
	}
	n, err := strconv.Atoi(sec)
	if err != nil || n < 0 || n > 59 {
		return 0, ErrInvalidLength
	}
	return m*60 + n, nil
}

// FormatLength renders seconds as "m:ss".
func FormatLength(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

package song

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gookit/validate"
)

// ErrInvalid wraps every validation failure returned by Validate.
var ErrInvalid = errors.New("song: invalid record")

// record mirrors the scalar invariants of Song as validate tags.
type record struct {
	Title   string   `validate:"required|maxLen:200"`
	Artists []string `validate:"required|minLen:1"`
	Year    int      `validate:"required|min:1000|max:9999"`
	Genres  []string `validate:"required|minLen:1"`
	Types   []string `validate:"required|minLen:1"`
	Length  int      `validate:"min:0"`
	Hint1   string   `validate:"required|maxLen:500"`
	Hint2   string   `validate:"required|maxLen:500"`
	Hint3   string   `validate:"required|maxLen:500"`
}

// Validate checks the invariants a catalog entry must hold before it is stored.
func Validate(s Song) error {
	r := record{
		Title:   strings.TrimSpace(s.Title),
		Artists: s.Artists,
		Year:    s.Year,
		Genres:  s.Genres,
		Types:   s.TypeNames(),
		Length:  s.Length,
		Hint1:   strings.TrimSpace(s.Hints[0]),
		Hint2:   strings.TrimSpace(s.Hints[1]),
		Hint3:   strings.TrimSpace(s.Hints[2]),
	}
	v := validate.Struct(&r)
	if !v.Validate() {
		return fmt.Errorf("%w: %s", ErrInvalid, v.Errors.One())
	}
	for _, a := range s.Artists {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("%w: artist names must not be blank", ErrInvalid)
		}
	}
	for _, g := range s.Genres {
		if strings.TrimSpace(g) == "" {
			return fmt.Errorf("%w: genres must not be blank", ErrInvalid)
		}
	}
	for _, k := range s.Types {
		if !k.Valid() {
			return fmt.Errorf("%w: %w: %q", ErrInvalid, ErrInvalidKind, k)
		}
	}
	return nil
}

// internal/game/engine.go
//
// Core game engine for a single Spordle round.
// Responsibilities:
//   - Create new rounds against a fixed target (attempt ceiling 10).
//   - Score a guessed song against the target field by field.
//   - Apply guesses and track state transitions: in_progress → won/lost.
//
// Notes:
//   - Resolving the guessed title to a song is done by Resolve (resolve.go);
//     the engine only ever sees songs.
//   - Unlocked hints are derived from Misses by HintsFor (hints.go).
package game

import (
	"errors"
	"strings"
	"time"

	"github.com/robalobadob/spordle/internal/song"
)

// DefaultMaxMisses is the number of incorrect guesses that ends a round.
const DefaultMaxMisses = 10

// ErrRoundOver is returned when a guess is applied to a finished round.
var ErrRoundOver = errors.New("round finished")

// NewRound constructs a round against targetID. maxMisses <= 0 selects the default.
func NewRound(id string, targetID int64, maxMisses int, now time.Time) *Round {
	if maxMisses <= 0 {
		maxMisses = DefaultMaxMisses
	}
	return &Round{
		ID:        id,
		TargetID:  targetID,
		Guesses:   []Guess{},
		MaxMisses: maxMisses,
		Status:    StatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Terminal reports whether the round is won or lost.
func (r *Round) Terminal() bool {
	return r.Status == StatusWon || r.Status == StatusLost
}

// Clone returns a deep copy safe to mutate independently.
func (r *Round) Clone() *Round {
	c := *r
	c.Guesses = make([]Guess, len(r.Guesses))
	copy(c.Guesses, r.Guesses)
	return &c
}

// Apply scores guess against target and mutates the round.
//
// State transitions:
//   - guess.ID == TargetID → Status = won, Misses unchanged.
//   - otherwise Misses++ and, once Misses reaches MaxMisses, Status = lost.
//
// Apply never mutates the round when it returns an error.
func (r *Round) Apply(guess, target song.Song, now time.Time) (Verdict, error) {
	if r.Terminal() {
		return Verdict{}, ErrRoundOver
	}
	if target.ID != r.TargetID {
		return Verdict{}, errors.New("target does not belong to round")
	}

	v := Evaluate(guess, target)
	r.Guesses = append(r.Guesses, Guess{
		SongID:  guess.ID,
		Title:   guess.Title,
		Cover:   guess.HasCover(),
		Verdict: v,
		At:      now,
	})
	r.UpdatedAt = now

	if guess.ID == r.TargetID {
		r.Status = StatusWon
		return v, nil
	}
	r.Misses++
	if r.Misses >= r.MaxMisses {
		r.Status = StatusLost
	}
	return v, nil
}

// Evaluate compares guess against target and returns per-field verdicts.
// Values echo the guess; the target only determines status and direction.
func Evaluate(guess, target song.Song) Verdict {
	return Verdict{
		Artists: SetField{Value: guess.Artists, Status: compareSets(guess.Artists, target.Artists)},
		Year:    compareOrdinal(guess.Year, target.Year),
		Genres:  SetField{Value: guess.Genres, Status: compareSets(guess.Genres, target.Genres)},
		Types:   SetField{Value: guess.TypeNames(), Status: compareSets(guess.TypeNames(), target.TypeNames())},
		Length:  withDisplay(compareOrdinal(guess.Length, target.Length)),
	}
}

// compareSets returns correct for equal sets, partial for overlapping sets
// and wrong for disjoint ones. Elements compare trimmed and case-folded;
// order and duplicates are ignored.
func compareSets(guess, target []string) Mark {
	g, t := toSet(guess), toSet(target)
	shared := 0
	for k := range g {
		if _, ok := t[k]; ok {
			shared++
		}
	}
	switch {
	case shared == len(g) && shared == len(t):
		return MarkCorrect
	case shared > 0:
		return MarkPartial
	default:
		return MarkWrong
	}
}

// compareOrdinal is exact or wrong; the direction tells the player where to go next.
func compareOrdinal(guess, target int) OrdinalField {
	f := OrdinalField{Value: guess, Status: MarkWrong}
	switch {
	case guess == target:
		f.Status = MarkCorrect
	case guess < target:
		f.Direction = DirectionHigher
	default:
		f.Direction = DirectionLower
	}
	return f
}

func withDisplay(f OrdinalField) OrdinalField {
	f.Display = song.FormatLength(f.Value)
	return f
}

// toSet converts a list into a normalized lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, s := range list {
		m[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return m
}

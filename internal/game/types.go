// internal/game/types.go
//
// Core type definitions for the Spordle game engine.
// Defines:
//   - Mark: per-field result of a guess (correct/partial/wrong).
//   - Direction: for year/length, which way the target lies.
//   - Verdict: the scored fields of one guess.
//   - Hint: one unlocked hint tier (text, cover or audio).
//   - Round: state of a single in-progress or finished round.

package game

import "time"

// Mark is the evaluation result for a single compared field.
//   - "correct": the field matches the target exactly.
//   - "partial": set fields share at least one element but differ.
//   - "wrong":   nothing in common (or a different year/length).
type Mark string

const (
	MarkCorrect Mark = "correct"
	MarkPartial Mark = "partial"
	MarkWrong   Mark = "wrong"
)

// Direction points from the guessed value toward the target value.
type Direction string

const (
	DirectionNone   Direction = ""
	DirectionHigher Direction = "higher" // target is greater than the guess
	DirectionLower  Direction = "lower"  // target is smaller than the guess
)

// SetField is the verdict for artists, genres and types.
type SetField struct {
	Value  []string `json:"value"`
	Status Mark     `json:"status"`
}

// OrdinalField is the verdict for year and length.
type OrdinalField struct {
	Value     int       `json:"value"`
	Display   string    `json:"display,omitempty"`
	Status    Mark      `json:"status"`
	Direction Direction `json:"direction,omitempty"`
}

// Verdict holds the per-field comparison of a guess against the target.
// Keys follow the wire format the web client renders.
type Verdict struct {
	Artists SetField     `json:"artist"`
	Year    OrdinalField `json:"year"`
	Genres  SetField     `json:"genre"`
	Types   SetField     `json:"type"`
	Length  OrdinalField `json:"length"`
}

// HintKind tags the payload carried by a Hint.
type HintKind string

const (
	HintText  HintKind = "text"
	HintCover HintKind = "cover"
	HintAudio HintKind = "audio"
)

// Hint is one unlocked tier. URL is set for cover and audio hints only.
type Hint struct {
	Tier int      `json:"tier"`
	Kind HintKind `json:"type"`
	Text string   `json:"text"`
	URL  string   `json:"url,omitempty"`
}

// Status is the lifecycle state of a round.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// Guess is one recorded attempt: the guessed song and how it scored.
type Guess struct {
	SongID  int64     `json:"songId"`
	Title   string    `json:"title"`
	Cover   bool      `json:"-"`
	Verdict Verdict   `json:"verdict"`
	At      time.Time `json:"at"`
}

// Round holds the state of a single play-through against one target song.
type Round struct {
	ID        string    // Unguessable session identifier.
	TargetID  int64     // Catalog id of the hidden song; never changes.
	Guesses   []Guess   // Every resolved guess in submission order.
	Misses    int       // Number of incorrect guesses recorded.
	MaxMisses int       // Attempt ceiling (10 by default).
	Status    Status    // in_progress, won or lost.
	CreatedAt time.Time // When the round started.
	UpdatedAt time.Time // Last guess (or creation) time, used for idle reclaim.
}

// Media carries session-scoped asset URLs handed to the hint policy so that
// hints never expose catalog ids.
type Media struct {
	CoverURL         string
	ExtendedAudioURL string
}


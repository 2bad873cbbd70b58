package round

import (
	"strconv"

	"github.com/robalobadob/spordle/internal/game"
	"github.com/robalobadob/spordle/internal/song"
)

// Stage selects which audio rendition of the target is requested.
type Stage string

const (
	StagePreview  Stage = "preview"
	StageExtended Stage = "extended"
	StageFull     Stage = "full"
)

// ParseStage maps a path segment to a Stage.
func ParseStage(s string) (Stage, bool) {
	switch st := Stage(s); st {
	case StagePreview, StageExtended, StageFull:
		return st, true
	}
	return "", false
}

// Session-scoped asset URLs. None of them contain the target's catalog id.
func AudioURL(sid string, st Stage) string { return "/api/game/" + sid + "/audio/" + string(st) }
func CoverURL(sid string) string           { return "/api/game/" + sid + "/cover" }

// SongCoverURL is the public cover of a song the player has already guessed.
func SongCoverURL(id int64) string { return "/api/songs/" + strconv.FormatInt(id, 10) + "/cover" }

func mediaFor(sid string) game.Media {
	return game.Media{CoverURL: CoverURL(sid), ExtendedAudioURL: AudioURL(sid, StageExtended)}
}

// Start is returned when a round begins.
type Start struct {
	SessionID      string `json:"sessionId"`
	PreviewURL     string `json:"previewUrl"`
	MaxAttempts    int    `json:"maxAttempts"`
	PreviewSeconds int    `json:"previewSeconds"`
}

// GuessRow is one scored guess as the client renders it.
type GuessRow struct {
	Title    string `json:"title"`
	CoverURL string `json:"coverUrl,omitempty"`
	game.Verdict
}

func rowFor(g game.Guess) GuessRow {
	row := GuessRow{Title: g.Title, Verdict: g.Verdict}
	if g.Cover {
		row.CoverURL = SongCoverURL(g.SongID)
	}
	return row
}

// Solution describes the target once a round is over.
type Solution struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Artists  []string  `json:"artists"`
	Year     int       `json:"year"`
	Genres   []string  `json:"genres"`
	Types    []string  `json:"types"`
	Length   int       `json:"length"`
	Duration string    `json:"duration"`
	Hints    [3]string `json:"hints"`
	CoverURL string    `json:"coverUrl,omitempty"`
	AudioURL string    `json:"audioUrl,omitempty"`
}

func solutionFor(sid string, target song.Song) *Solution {
	s := &Solution{
		ID:       target.ID,
		Title:    target.Title,
		Artists:  target.Artists,
		Year:     target.Year,
		Genres:   target.Genres,
		Types:    target.TypeNames(),
		Length:   target.Length,
		Duration: song.FormatLength(target.Length),
		Hints:    target.Hints,
	}
	if target.HasCover() {
		s.CoverURL = CoverURL(sid)
	}
	if target.AudioRef != "" {
		s.AudioURL = AudioURL(sid, StageFull)
	}
	return s
}

// GuessResult is the outcome of SubmitGuess. Valid is false when the title
// matched no song; nothing about the round changed in that case.
type GuessResult struct {
	Valid       bool        `json:"valid"`
	Message     string      `json:"message,omitempty"`
	Correct     bool        `json:"correct"`
	Status      game.Status `json:"status"`
	Attempts    int         `json:"attempts"`
	MaxAttempts int         `json:"maxAttempts"`
	Guess       *GuessRow   `json:"guess,omitempty"`
	Hints       []game.Hint `json:"hints,omitempty"`
	NextHintAt  int         `json:"nextHintAt"`
	Solution    *Solution   `json:"solution,omitempty"`
}

// HintsView lists the hints unlocked so far.
type HintsView struct {
	Attempts    int         `json:"attempts"`
	MaxAttempts int         `json:"maxAttempts"`
	NextHintAt  int         `json:"nextHintAt"`
	Hints       []game.Hint `json:"hints"`
}

// StateView lets a client resume a round after a reload.
type StateView struct {
	SessionID   string      `json:"sessionId"`
	Status      game.Status `json:"status"`
	Attempts    int         `json:"attempts"`
	MaxAttempts int         `json:"maxAttempts"`
	PreviewURL  string      `json:"previewUrl"`
	Guesses     []GuessRow  `json:"guesses"`
	Hints       []game.Hint `json:"hints"`
	NextHintAt  int         `json:"nextHintAt"`
	Solution    *Solution   `json:"solution,omitempty"`
}

// Asset is a gated media reference plus the playback limit in seconds
// (0 means the whole file may be played).
type Asset struct {
	Ref          string
	LimitSeconds int
}

package daily

import (
	"context"
	"database/sql"
	"fmt"
)

// Result is the archived outcome of one finished round.
type Result struct {
	SessionID string `json:"sessionId"`
	Date      string `json:"date"`
	SongID    int64  `json:"songId"`
	Status    string `json:"status"` // won | lost
	Misses    int    `json:"misses"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Summary aggregates the results of one date.
type Summary struct {
	Date       string  `json:"date"`
	Played     int     `json:"played"`
	Won        int     `json:"won"`
	Lost       int     `json:"lost"`
	AvgGuesses float64 `json:"avgGuesses"` // over won rounds
}

// Archive records finished rounds in the round_results table.
type Archive struct{ db *sql.DB }

func NewArchive(db *sql.DB) *Archive { return &Archive{db: db} }

// InsertResult stores r once; repeated inserts for the same session are ignored.
func (a *Archive) InsertResult(ctx context.Context, r Result) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO round_results(session_id, date, song_id, status, misses, guesses, elapsed_ms)
        VALUES(?,?,?,?,?,?,?)`, r.SessionID, r.Date, r.SongID, r.Status, r.Misses, r.Guesses, r.ElapsedMs,
	)
	if err != nil {
		return fmt.Errorf("insert round result: %w", err)
	}
	return nil
}

func (a *Archive) Summary(ctx context.Context, date string) (Summary, error) {
	s := Summary{Date: date}
	var avg sql.NullFloat64
	err := a.db.QueryRowContext(ctx, `
        SELECT COUNT(1),
               COALESCE(SUM(status = 'won'), 0),
               COALESCE(SUM(status = 'lost'), 0),
               AVG(CASE WHEN status = 'won' THEN guesses END)
        FROM round_results
        WHERE date=?`, date,
	).Scan(&s.Played, &s.Won, &s.Lost, &avg)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize %s: %w", date, err)
	}
	s.AvgGuesses = avg.Float64
	return s, nil
}

package daily

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/spordle/assets"
	"github.com/robalobadob/spordle/internal/database"
)

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	assert.Equal(t, "2026-10-13", DateKey(time.Date(2026, 10, 14, 1, 0, 0, 0, loc)))
}

func TestIndex_StablePerDay(t *testing.T) {
	morning := time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 10, 14, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, Index(morning, "salt", 50), Index(evening, "salt", 50))
	assert.Zero(t, Index(morning, "salt", 0))

	for d := 0; d < 30; d++ {
		i := Index(morning.AddDate(0, 0, d), "salt", 7)
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 7)
	}
}

func TestPickers(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC)
	ids := []int64{10, 20, 30}

	_, err := RandomPicker{}.Pick(ctx, nil, now)
	assert.ErrorIs(t, err, ErrNoCandidates)
	_, err = DatePicker{}.Pick(ctx, nil, now)
	assert.ErrorIs(t, err, ErrNoCandidates)

	got, err := RandomPicker{}.Pick(ctx, ids, now)
	require.NoError(t, err)
	assert.Contains(t, ids, got)

	p := DatePicker{Salt: "s"}
	a, _ := p.Pick(ctx, ids, now)
	b, _ := p.Pick(ctx, ids, now.Add(3*time.Hour))
	assert.Equal(t, a, b)

	assert.IsType(t, DatePicker{}, NewPicker("daily", "x"))
	assert.IsType(t, RandomPicker{}, NewPicker("random", "x"))
}

func TestArchive_InsertAndSummary(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db, assets.Migrations()))

	a := NewArchive(db)
	require.NoError(t, a.InsertResult(ctx, Result{SessionID: "s1", Date: "2026-10-14", SongID: 1, Status: "won", Misses: 2, Guesses: 3}))
	require.NoError(t, a.InsertResult(ctx, Result{SessionID: "s1", Date: "2026-10-14", SongID: 1, Status: "won", Misses: 2, Guesses: 3}))
	require.NoError(t, a.InsertResult(ctx, Result{SessionID: "s2", Date: "2026-10-14", SongID: 1, Status: "won", Misses: 4, Guesses: 5}))
	require.NoError(t, a.InsertResult(ctx, Result{SessionID: "s3", Date: "2026-10-14", SongID: 1, Status: "lost", Misses: 10, Guesses: 10}))

	s, err := a.Summary(ctx, "2026-10-14")
	require.NoError(t, err)
	assert.Equal(t, Summary{Date: "2026-10-14", Played: 3, Won: 2, Lost: 1, AvgGuesses: 4}, s)

	empty, err := a.Summary(ctx, "2026-10-15")
	require.NoError(t, err)
	assert.Equal(t, Summary{Date: "2026-10-15"}, empty)
}

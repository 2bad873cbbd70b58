package daily

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math/big"
	"time"
)

// ErrNoCandidates is returned when a picker is given no song ids.
var ErrNoCandidates = errors.New("daily: no songs to pick from")

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Index returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func Index(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Picker chooses the target song of a new round.
type Picker interface {
	Pick(ctx context.Context, ids []int64, now time.Time) (int64, error)
}

// RandomPicker picks a uniformly random song per round.
type RandomPicker struct{}

func (RandomPicker) Pick(_ context.Context, ids []int64, _ time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoCandidates
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(ids))))
	if err != nil {
		return 0, err
	}
	return ids[n.Int64()], nil
}

// DatePicker picks the same song for everyone on a given UTC day.
// ids must be in a stable order (ascending id) for the choice to be stable.
type DatePicker struct {
	Salt string
}

func (p DatePicker) Pick(_ context.Context, ids []int64, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoCandidates
	}
	return ids[Index(now, p.Salt, len(ids))], nil
}

// NewPicker returns the picker for a game mode: "daily" or anything else for random.
func NewPicker(mode, salt string) Picker {
	if mode == "daily" {
		return DatePicker{Salt: salt}
	}
	return RandomPicker{}
}

package game

import "github.com/robalobadob/spordle/internal/song"

// Miss counts at which hint tiers 1, 2 and 3 unlock.
var hintThresholds = [3]int{3, 6, 9}

// HintsFor returns every tier unlocked at the given miss count, in tier order.
// Locked tiers are left out entirely.
//
//	tier 1 (≥3): the target's first hint text.
//	tier 2 (≥6): second hint text plus the target's cover.
//	tier 3 (≥9): third hint text plus an extended audio preview.
func HintsFor(target song.Song, misses int, media Media) []Hint {
	out := make([]Hint, 0, len(hintThresholds))
	for i, at := range hintThresholds {
		if misses < at {
			break
		}
		h := Hint{Tier: i + 1, Text: target.Hints[i]}
		switch i {
		case 0:
			h.Kind = HintText
		case 1:
			h.Kind = HintCover
			if target.HasCover() {
				h.URL = media.CoverURL
			}
		case 2:
			h.Kind = HintAudio
			if target.HasAudio() {
				h.URL = media.ExtendedAudioURL
			}
		}
		out = append(out, h)
	}
	return out
}

// NextHintAt returns the miss count that unlocks the next tier, or 0 when
// all tiers are already unlocked.
func NextHintAt(misses int) int {
	for _, at := range hintThresholds {
		if misses < at {
			return at
		}
	}
	return 0
}

// CoverUnlocked reports whether the cover may be shown at this miss count.
func CoverUnlocked(misses int) bool { return misses >= hintThresholds[1] }

// ExtendedAudioUnlocked reports whether the extended preview may be played.
func ExtendedAudioUnlocked(misses int) bool { return misses >= hintThresholds[2] }

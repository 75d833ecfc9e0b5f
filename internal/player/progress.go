package player

import "math"

// Progress summarizes how far through a playlist playback has come.
// Tracks with unknown duration count as zero-length.
type Progress struct {
	TotalSeconds     float64
	PlayedSeconds    float64
	RemainingSeconds float64
	Percent          int
}

// computeProgress sums per-track durations: everything before index
// counts as fully played, plus elapsed seconds within the current
// track clamped to its duration.
func computeProgress(durations []float64, index int, elapsed float64) Progress {
	var total, played float64
	for i, d := range durations {
		if d < 0 {
			d = 0
		}
		total += d
		if i < index {
			played += d
		} else if i == index {
			if elapsed < 0 {
				elapsed = 0
			}
			if elapsed > d {
				elapsed = d
			}
			played += elapsed
		}
	}

	remaining := total - played
	if remaining < 0 {
		remaining = 0
	}
	percent := 0
	if total > 0 {
		percent = int(math.Round(played / total * 100))
	}
	return Progress{
		TotalSeconds:     total,
		PlayedSeconds:    played,
		RemainingSeconds: remaining,
		Percent:          percent,
	}
}

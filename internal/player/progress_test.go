package player

import "testing"

func TestComputeProgressMidTrack(t *testing.T) {
	p := computeProgress([]float64{60, 120, 60}, 1, 30)
	if p.TotalSeconds != 240 {
		t.Fatalf("expected total 240, got %v", p.TotalSeconds)
	}
	if p.PlayedSeconds != 90 {
		t.Fatalf("expected played 90, got %v", p.PlayedSeconds)
	}
	if p.RemainingSeconds != 150 {
		t.Fatalf("expected remaining 150, got %v", p.RemainingSeconds)
	}
	if p.Percent != 38 {
		t.Fatalf("expected 38%%, got %d", p.Percent)
	}
}

func TestComputeProgressRoundsPercent(t *testing.T) {
	// played = 100 + elapsed over a 250s total: 59.9% and 60.2% both
	// report 60, 60.5% reports 61.
	cases := []struct {
		elapsed float64
		percent int
	}{
		{49.75, 60},
		{50.5, 60},
		{51.25, 61},
	}
	for _, tc := range cases {
		p := computeProgress([]float64{100, 150}, 1, tc.elapsed)
		if p.Percent != tc.percent {
			t.Fatalf("elapsed %v: expected %d%%, got %d", tc.elapsed, tc.percent, p.Percent)
		}
	}
}

func TestComputeProgressClampsElapsed(t *testing.T) {
	p := computeProgress([]float64{60}, 0, 999)
	if p.PlayedSeconds != 60 || p.RemainingSeconds != 0 {
		t.Fatalf("expected elapsed clamped to track length, got %+v", p)
	}

	p = computeProgress([]float64{60}, 0, -5)
	if p.PlayedSeconds != 0 {
		t.Fatalf("expected negative elapsed clamped to zero, got %+v", p)
	}
}

func TestComputeProgressUnknownDurations(t *testing.T) {
	p := computeProgress([]float64{0, 0}, 1, 10)
	if p.TotalSeconds != 0 || p.Percent != 0 {
		t.Fatalf("expected zero progress for unknown durations, got %+v", p)
	}
}

func TestComputeProgressPastEnd(t *testing.T) {
	p := computeProgress([]float64{30, 30}, 2, 0)
	if p.PlayedSeconds != 60 || p.RemainingSeconds != 0 {
		t.Fatalf("expected everything played, got %+v", p)
	}
	if p.Percent != 100 {
		t.Fatalf("expected 100%%, got %d", p.Percent)
	}
}

func TestComputeProgressEmpty(t *testing.T) {
	p := computeProgress(nil, 0, 0)
	if p.TotalSeconds != 0 || p.Percent != 0 {
		t.Fatalf("expected zero progress, got %+v", p)
	}
}

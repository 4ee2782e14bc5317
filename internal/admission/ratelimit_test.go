package admission

import (
	"testing"
	"time"
)

func TestRateWindow_PostIncrementComparison(t *testing.T) {
	var w rateWindow
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	count, exceeded := w.advance(now, 1)
	if count != 1 || exceeded {
		t.Errorf("Expected (1, false), got (%d, %v)", count, exceeded)
	}

	// The triggering message counts toward and itself exceeds the quota.
	count, exceeded = w.advance(now, 1)
	if count != 2 || !exceeded {
		t.Errorf("Expected (2, true), got (%d, %v)", count, exceeded)
	}
}

func TestRateWindow_ResetOnExpiry(t *testing.T) {
	var w rateWindow
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		w.advance(start, 3)
	}

	// Exactly at the window boundary the window has not expired yet.
	count, exceeded := w.advance(start.Add(windowLength), 3)
	if count != 6 || !exceeded {
		t.Errorf("Expected (6, true) at boundary, got (%d, %v)", count, exceeded)
	}

	// Past the boundary the counter resets.
	count, exceeded = w.advance(start.Add(windowLength+time.Second), 3)
	if count != 1 || exceeded {
		t.Errorf("Expected (1, false) after expiry, got (%d, %v)", count, exceeded)
	}
}

func TestRateWindow_ZeroValueStartsFresh(t *testing.T) {
	var w rateWindow
	now := time.Now()

	count, exceeded := w.advance(now, 10)
	if count != 1 || exceeded {
		t.Errorf("Expected fresh window to count from 1, got (%d, %v)", count, exceeded)
	}
	if w.windowStart != now {
		t.Error("Expected window start to be initialized on first advance")
	}
}

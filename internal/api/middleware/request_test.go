package middleware

import (
	"testing"
	"time"
)

func TestIPAttemptTrackerBlocksAfterMax(t *testing.T) {
	tracker := NewIPAttemptTracker(3)
	ip := "203.0.113.9"

	for i := 0; i < 3; i++ {
		tracker.RecordAttempt(ip)
		if tracker.IsBlocked(ip) {
			t.Fatalf("blocked after %d attempts, limit is 3", i+1)
		}
	}

	tracker.RecordAttempt(ip)
	if !tracker.IsBlocked(ip) {
		t.Error("not blocked after exceeding the attempt limit")
	}

	if tracker.IsBlocked("203.0.113.10") {
		t.Error("unrelated address blocked")
	}
}

func TestIPAttemptTrackerUnblocksAfterQuietWindow(t *testing.T) {
	tracker := NewIPAttemptTracker(1)
	ip := "203.0.113.9"

	tracker.RecordAttempt(ip)
	tracker.RecordAttempt(ip)
	if !tracker.IsBlocked(ip) {
		t.Fatal("expected the address to be blocked")
	}

	// Backdate the last attempt past the quiet window; the block must
	// lapse without waiting for the cleanup ticker.
	tracker.mu.Lock()
	tracker.attempts[ip].LastAttempt = time.Now().Add(-attemptQuietWindow - time.Second)
	tracker.mu.Unlock()

	if tracker.IsBlocked(ip) {
		t.Error("address still blocked after the quiet window passed")
	}

	// A fresh attempt after the window starts a clean count.
	tracker.RecordAttempt(ip)
	if tracker.IsBlocked(ip) {
		t.Error("single attempt after the quiet window re-blocked the address")
	}
}

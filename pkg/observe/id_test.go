package observe

import (
	"encoding/hex"
	"testing"
)

func TestNewID_FormatAndUniqueness(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 200; i++ {
		id := NewID()
		if len(id) != 16 {
			t.Fatalf("id length = %d, want 16: %q", len(id), id)
		}
		if _, err := hex.DecodeString(id); err != nil {
			t.Fatalf("id is not hex: %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id after %d draws: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewObservation_CapsContent(t *testing.T) {
	long := make([]byte, MaxContentLength*2)
	for i := range long {
		long[i] = 'a'
	}
	obs := NewObservation(TypeDiscovery, "Read", "Read big file", string(long), Meta{SessionID: "s1"})
	if len(obs.Content) > MaxContentLength {
		t.Fatalf("content length = %d, exceeds cap", len(obs.Content))
	}
	if obs.Timestamp == 0 {
		t.Fatalf("timestamp not set")
	}
	if obs.Meta.SessionID != "s1" {
		t.Fatalf("session id lost: %+v", obs.Meta)
	}
}

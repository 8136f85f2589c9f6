package ids

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestNewIsMonotonic(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	prev := NewAt(at)
	for i := 0; i < 100; i++ {
		next := NewAt(at)
		if next <= prev {
			t.Fatalf("expected %s > %s", next, prev)
		}
		prev = next
	}
}

func TestNewParses(t *testing.T) {
	id := New()
	if _, err := ulid.Parse(id); err != nil {
		t.Fatalf("expected valid ulid, got %q: %v", id, err)
	}
}

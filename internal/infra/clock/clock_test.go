package clock

import (
	"testing"
	"time"
)

func TestSystem_NonDecreasing(t *testing.T) {
	c := NewSystem()
	prev := c.Now()
	for i := 0; i < 1000; i++ {
		now := c.Now()
		if now.Before(prev) {
			t.Fatalf("reading %d went backwards: %v < %v", i, now, prev)
		}
		prev = now
	}
	if prev.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", prev.Location())
	}
}

func TestManual(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewManual(start)

	if !c.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", c.Now(), start)
	}

	c.Advance(24 * time.Hour)
	if want := start.Add(24 * time.Hour); !c.Now().Equal(want) {
		t.Errorf("after Advance: %v, want %v", c.Now(), want)
	}

	c.Advance(-time.Hour)
	if want := start.Add(24 * time.Hour); !c.Now().Equal(want) {
		t.Errorf("negative Advance moved clock to %v", c.Now())
	}

	c.Set(start)
	if want := start.Add(24 * time.Hour); !c.Now().Equal(want) {
		t.Errorf("Set into the past moved clock to %v", c.Now())
	}

	later := start.Add(72 * time.Hour)
	c.Set(later)
	if !c.Now().Equal(later) {
		t.Errorf("Set forward: %v, want %v", c.Now(), later)
	}
}

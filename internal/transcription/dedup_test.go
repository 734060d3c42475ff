package transcription

import (
	"testing"
	"time"
)

func TestDeduperSuppressesWithinWindow(t *testing.T) {
	clock := time.Unix(0, 0)
	d := NewDeduper(600 * time.Millisecond)
	d.now = func() time.Time { return clock }

	if d.IsDuplicate("hello") {
		t.Fatal("first occurrence flagged as duplicate")
	}

	clock = clock.Add(300 * time.Millisecond)
	if !d.IsDuplicate("hello") {
		t.Fatal("repeat at 300ms not suppressed")
	}

	// A suppressed word does not refresh the slot, so the spacing is
	// measured from the admitted occurrence.
	clock = clock.Add(400 * time.Millisecond)
	if d.IsDuplicate("hello") {
		t.Fatal("repeat at 700ms after admission suppressed")
	}
}

func TestDeduperAdmitsOutsideWindow(t *testing.T) {
	clock := time.Unix(0, 0)
	d := NewDeduper(600 * time.Millisecond)
	d.now = func() time.Time { return clock }

	d.IsDuplicate("hello")
	clock = clock.Add(700 * time.Millisecond)
	if d.IsDuplicate("hello") {
		t.Fatal("repeat at 700ms suppressed")
	}
}

func TestDeduperDistinctWords(t *testing.T) {
	clock := time.Unix(0, 0)
	d := NewDeduper(600 * time.Millisecond)
	d.now = func() time.Time { return clock }

	if d.IsDuplicate("hello") || d.IsDuplicate("world") {
		t.Fatal("distinct consecutive words suppressed")
	}
	// "world" now holds the slot; "hello" is fresh again.
	if d.IsDuplicate("hello") {
		t.Fatal("word evicted from slot still suppressed")
	}
}

func TestDeduperDefaultWindow(t *testing.T) {
	d := NewDeduper(0)
	if d.window != DefaultDedupWindow {
		t.Fatalf("window: want=%v got=%v", DefaultDedupWindow, d.window)
	}
}

package transcription

import (
	"time"
)

// DefaultDedupWindow suppresses a word identical to the immediately
// preceding admitted word within this interval.
const DefaultDedupWindow = 600 * time.Millisecond

// Deduper is a single-slot debouncer over admitted words. Overlapping
// segment windows make the speech model re-emit the same word at the
// window seam; the deduper absorbs that.
//
// State deliberately survives disable/enable cycles, so a word straddling
// a pause is not emitted twice.
type Deduper struct {
	window   time.Duration
	lastWord string
	lastTime time.Time
	now      func() time.Time
}

// NewDeduper creates a deduper with the given suppression window. A
// non-positive window falls back to DefaultDedupWindow.
func NewDeduper(window time.Duration) *Deduper {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Deduper{window: window, now: time.Now}
}

// IsDuplicate reports whether word repeats the previous admitted word
// within the suppression window. A suppressed word does not update the
// slot; an admitted one overwrites it.
func (d *Deduper) IsDuplicate(word string) bool {
	now := d.now()
	if d.lastWord == word && now.Sub(d.lastTime) < d.window {
		return true
	}
	d.lastWord = word
	d.lastTime = now
	return false
}

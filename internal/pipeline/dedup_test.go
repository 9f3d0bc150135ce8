package pipeline

import (
	"fmt"
	"testing"
)

func TestDeduperSeenAfterMark(t *testing.T) {
	d := NewDeduper(4)

	if d.Seen("Ev1") {
		t.Error("unmarked ID reported as seen")
	}
	d.Mark("Ev1")
	if !d.Seen("Ev1") {
		t.Error("marked ID not reported as seen")
	}
	if d.Seen("Ev2") {
		t.Error("unrelated ID reported as seen")
	}
}

func TestDeduperSeenDoesNotRecord(t *testing.T) {
	d := NewDeduper(4)

	// Checking must leave no trace: a delivery that fails before Mark
	// must not cause the platform's redelivery to be dropped.
	d.Seen("Ev1")
	if d.Seen("Ev1") {
		t.Error("Seen() recorded the ID, redelivery would be dropped")
	}
}

func TestDeduperEmptyIDNeverDeduplicated(t *testing.T) {
	d := NewDeduper(4)
	d.Mark("")
	if d.Seen("") {
		t.Error("empty ID must never be deduplicated")
	}
}

func TestDeduperEvictsOldest(t *testing.T) {
	d := NewDeduper(3)

	d.Mark("a")
	d.Mark("b")
	d.Mark("c")
	d.Mark("d") // evicts "a"

	if d.Seen("a") {
		t.Error("evicted ID still reported as seen")
	}
	if !d.Seen("d") {
		t.Error("recent ID lost")
	}
}

func TestDeduperMarkIdempotent(t *testing.T) {
	d := NewDeduper(3)

	d.Mark("a")
	d.Mark("a")
	d.Mark("b")
	d.Mark("c")

	// The duplicate mark must not consume a second slot.
	if !d.Seen("a") {
		t.Error("re-marked ID was evicted early")
	}
}

func TestDeduperBoundedMemory(t *testing.T) {
	d := NewDeduper(8)
	for i := 0; i < 1000; i++ {
		d.Mark(fmt.Sprintf("Ev%d", i))
	}
	if len(d.seen) > 8 {
		t.Errorf("deduper holds %d entries, capacity is 8", len(d.seen))
	}
}

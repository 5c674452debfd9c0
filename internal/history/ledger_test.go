package history

import (
	"fmt"
	"testing"
)

func TestRecordPrependsNewestFirst(t *testing.T) {
	var l Ledger
	l = Record(l, "1+1", "2")
	l = Record(l, "2+2", "4")

	lines := l.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(lines))
	}
	if lines[0] != "2+2 = 4" || lines[1] != "1+1 = 2" {
		t.Fatalf("unexpected order: %q", lines)
	}
}

func TestRecordSuppressesRepeatedHead(t *testing.T) {
	var l Ledger
	l = Record(l, "2+2", "4")
	l = Record(l, "2+2", "4")

	if l.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", l.Len())
	}
}

func TestRecordOnlyComparesAgainstHead(t *testing.T) {
	var l Ledger
	l = Record(l, "2+2", "4")
	l = Record(l, "3+3", "6")
	l = Record(l, "2+2", "4")

	if l.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", l.Len())
	}
}

func TestRecordEvictsOldestAtCapacity(t *testing.T) {
	var l Ledger
	for i := 0; i < Capacity+1; i++ {
		l = Record(l, fmt.Sprintf("%d+0", i), fmt.Sprint(i))
	}

	if l.Len() != Capacity {
		t.Fatalf("expected %d entries, got %d", Capacity, l.Len())
	}
	head, _ := l.Head()
	if head.Result != "50" {
		t.Fatalf("expected newest result %q, got %q", "50", head.Result)
	}
	last, _ := l.At(Capacity - 1)
	if last.Result != "1" {
		t.Fatalf("expected oldest surviving result %q, got %q", "1", last.Result)
	}
}

func TestRecordDoesNotMutateInput(t *testing.T) {
	base := Record(Ledger{}, "1+1", "2")
	next := Record(base, "2+2", "4")
	_ = Record(base, "3+3", "6")

	if base.Len() != 1 {
		t.Fatalf("expected base to keep 1 entry, got %d", base.Len())
	}
	if got, _ := next.At(1); got.Expression != "1+1" {
		t.Fatalf("expected second entry %q, got %q", "1+1", got.Expression)
	}
	if got, _ := next.Head(); got.Expression != "2+2" {
		t.Fatalf("expected head %q, got %q", "2+2", got.Expression)
	}
}

func TestSelectEntry(t *testing.T) {
	l := Record(Record(Ledger{}, "1+1", "2"), "2π", "6.28318530717959")

	got, ok := SelectEntry(l, 0)
	if !ok || got != "6.28318530717959" {
		t.Fatalf("expected %q, got %q (ok=%t)", "6.28318530717959", got, ok)
	}

	got, ok = SelectEntry(l, 1)
	if !ok || got != "2" {
		t.Fatalf("expected %q, got %q (ok=%t)", "2", got, ok)
	}

	for _, index := range []int{-1, 2} {
		if _, ok := SelectEntry(l, index); ok {
			t.Fatalf("expected index %d to be out of range", index)
		}
	}
}

func TestClear(t *testing.T) {
	l := Record(Ledger{}, "1+1", "2")
	cleared := l.Clear()

	if cleared.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d entries", cleared.Len())
	}
	if l.Len() != 1 {
		t.Fatal("expected Clear to leave the original ledger intact")
	}
}

func TestFromEntriesTruncatesAndCopies(t *testing.T) {
	entries := make([]Entry, Capacity+5)
	for i := range entries {
		entries[i] = Entry{Expression: fmt.Sprint(i), Result: fmt.Sprint(i)}
	}

	l := FromEntries(entries)
	if l.Len() != Capacity {
		t.Fatalf("expected %d entries, got %d", Capacity, l.Len())
	}

	entries[0].Result = "changed"
	if head, _ := l.Head(); head.Result != "0" {
		t.Fatalf("expected ledger to be independent of input slice, got head %q", head.Result)
	}
}

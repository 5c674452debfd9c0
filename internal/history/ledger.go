// Package history keeps the bounded, most-recent-first list of accepted
// evaluations. A Ledger is an immutable value: every operation returns a new
// Ledger and leaves its input untouched.
package history

// Capacity is the maximum number of entries a Ledger holds.
const Capacity = 50

// separator joins an entry's expression and result for display.
const separator = " = "

// Entry is one accepted evaluation.
type Entry struct {
	Expression string `json:"expression"`
	Result     string `json:"result"`
}

// String formats the entry as "expression = result".
func (e Entry) String() string {
	return e.Expression + separator + e.Result
}

// Ledger is an ordered sequence of entries, newest first.
type Ledger struct {
	entries []Entry
}

// FromEntries builds a ledger from entries ordered newest first, keeping at
// most Capacity of them.
func FromEntries(entries []Entry) Ledger {
	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}
	return Ledger{entries: append([]Entry(nil), entries...)}
}

// Record returns l with expression = result prepended. Recording the same
// line as the current head is a no-op, so repeated equals presses do not
// pile up duplicates. The oldest entry is evicted beyond Capacity.
func Record(l Ledger, expression, result string) Ledger {
	e := Entry{Expression: expression, Result: result}
	if head, ok := l.Head(); ok && head.String() == e.String() {
		return l
	}

	n := min(len(l.entries)+1, Capacity)
	entries := make([]Entry, 0, n)
	entries = append(entries, e)
	entries = append(entries, l.entries[:n-1]...)
	return Ledger{entries: entries}
}

// SelectEntry returns the result portion of the entry at index, for
// re-entering it into the display.
func SelectEntry(l Ledger, index int) (string, bool) {
	e, ok := l.At(index)
	if !ok {
		return "", false
	}
	return e.Result, true
}

// Clear returns an empty ledger.
func (l Ledger) Clear() Ledger {
	return Ledger{}
}

// Len returns the number of entries.
func (l Ledger) Len() int {
	return len(l.entries)
}

// At returns the entry at index, 0 being the most recent.
func (l Ledger) At(index int) (Entry, bool) {
	if index < 0 || index >= len(l.entries) {
		return Entry{}, false
	}
	return l.entries[index], true
}

// Head returns the most recent entry.
func (l Ledger) Head() (Entry, bool) {
	return l.At(0)
}

// Entries returns a copy of the entries, newest first.
func (l Ledger) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Lines returns every entry formatted as "expression = result".
func (l Ledger) Lines() []string {
	lines := make([]string, len(l.entries))
	for i, e := range l.entries {
		lines[i] = e.String()
	}
	return lines
}

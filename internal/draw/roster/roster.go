// Package roster provides the pre-loaded pool of draw-eligible entries and
// its CSV ingestion. A roster is sampled without replacement: the remaining
// subset shrinks by one on every successful roster-mode draw and is restored
// only by a reset or a wholesale replacement.
package roster

import (
	"fmt"

	"luckydraw/internal/draw/rng"
)

// Entry is one draw-eligible record: a number and the name of its owner.
// Immutable once loaded.
type Entry struct {
	Number int    `json:"number"`
	Owner  string `json:"owner"`
}

// Roster holds the ordered entry list and the derived remaining subset.
//
// Roster performs no locking of its own: it is mutated only at draw-start
// time by the session that owns it, under the session's mutex.
type Roster struct {
	entries   []Entry
	remaining []Entry
}

// New creates a Roster over entries. The remaining subset starts as the
// full list.
//
// Postcondition: Len() == Remaining() == len(entries).
func New(entries []Entry) *Roster {
	r := &Roster{entries: make([]Entry, len(entries))}
	copy(r.entries, entries)
	r.restore()
	return r
}

// Len returns the total number of loaded entries.
func (r *Roster) Len() int {
	return len(r.entries)
}

// Remaining returns the number of entries not yet drawn this session.
func (r *Roster) Remaining() int {
	return len(r.remaining)
}

// Entries returns a copy of the full ordered entry list.
func (r *Roster) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// TakeRandom draws one entry uniformly at random from the remaining subset
// and removes it (draw without replacement).
//
// Postcondition: Returns (entry, true) and Remaining() decreases by one, or
// (zero, false) if the remaining subset is empty.
func (r *Roster) TakeRandom(src rng.Source) (Entry, bool) {
	if len(r.remaining) == 0 {
		return Entry{}, false
	}
	i := src.Intn(len(r.remaining))
	e := r.remaining[i]
	r.remaining = append(r.remaining[:i], r.remaining[i+1:]...)
	return e, true
}

// Restore puts every entry back into the remaining subset, preserving the
// original load order.
//
// Postcondition: Remaining() == Len().
func (r *Roster) Restore() {
	r.restore()
}

func (r *Roster) restore() {
	r.remaining = make([]Entry, len(r.entries))
	copy(r.remaining, r.entries)
}

// Lint reports non-fatal quality problems with entries: duplicate numbers
// and numbers too wide for the configured digit count. The engine tolerates
// both (duplicates stay drawable, wide numbers are truncated at display
// time), so callers surface these as warnings rather than rejecting the
// roster.
func Lint(entries []Entry, digitCount int) []string {
	var warnings []string

	limit := 1
	for i := 0; i < digitCount; i++ {
		limit *= 10
	}

	seen := make(map[int]int, len(entries))
	for i, e := range entries {
		if first, dup := seen[e.Number]; dup {
			warnings = append(warnings, fmt.Sprintf(
				"duplicate number %d: rows %d and %d (owners %q and %q)",
				e.Number, first+1, i+1, entries[first].Owner, e.Owner))
			continue
		}
		seen[e.Number] = i
		if e.Number >= limit {
			warnings = append(warnings, fmt.Sprintf(
				"number %d (owner %q) does not fit %d digit(s); display will keep the rightmost digits",
				e.Number, e.Owner, digitCount))
		}
	}
	return warnings
}

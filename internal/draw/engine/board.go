package engine

// Slot is one digit position on the reveal board. Index 0 is the leftmost
// slot. While a slot spins, Digit shuffles on every tick; once stopped it
// holds that slot's digit of the winning value.
type Slot struct {
	Index   int  `json:"index"`
	Digit   int  `json:"digit"`
	Stopped bool `json:"stopped"`
}

// board tracks the reveal of one winning value. It is a plain state
// holder: the session schedules every transition and guards access with
// its lock.
type board struct {
	value string
	slots []Slot
}

// newBoard lays out one slot per character of value, all spinning and
// showing zero.
func newBoard(value string) *board {
	b := &board{value: value, slots: make([]Slot, len(value))}
	for i := range b.slots {
		b.slots[i].Index = i
	}
	return b
}

// spin shuffles slot i to digit and reports whether the slot was still
// spinning. A stopped slot never changes.
func (b *board) spin(i, digit int) bool {
	if b.slots[i].Stopped {
		return false
	}
	b.slots[i].Digit = digit
	return true
}

// stop freezes slot i on its digit of the winning value.
func (b *board) stop(i int) {
	b.slots[i].Digit = int(b.value[i] - '0')
	b.slots[i].Stopped = true
}

func (b *board) stopped(i int) bool {
	return b.slots[i].Stopped
}

func (b *board) allStopped() bool {
	for i := range b.slots {
		if !b.slots[i].Stopped {
			return false
		}
	}
	return true
}

// snapshot copies the slots for callers outside the session lock.
func (b *board) snapshot() []Slot {
	out := make([]Slot, len(b.slots))
	copy(out, b.slots)
	return out
}

// displayed is the concatenation of the slot digits, which equals the
// winning value once every slot has stopped.
func (b *board) displayed() string {
	buf := make([]byte, len(b.slots))
	for i, s := range b.slots {
		buf[i] = byte('0' + s.Digit)
	}
	return string(buf)
}

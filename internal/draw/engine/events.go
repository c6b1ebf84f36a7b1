package engine

import "sync"

// EventType names a session transition.
type EventType string

const (
	EventRevealStarted EventType = "reveal_started"
	EventSlotSpun      EventType = "slot_spun"
	EventSlotStopped   EventType = "slot_stopped"
	EventDrawSettled   EventType = "draw_settled"
	EventSessionReset  EventType = "session_reset"
)

// Event is one observable session transition. Slots is a copy of the
// board at the moment of the transition. SlotIndex is -1 unless the
// event concerns a single slot. Winner is set only on EventDrawSettled.
type Event struct {
	Type      EventType `json:"type"`
	State     State     `json:"state"`
	SlotIndex int       `json:"slot_index"`
	Slots     []Slot    `json:"slots,omitempty"`
	Winner    *Winner   `json:"winner,omitempty"`
}

// publisher fans events out to subscriber channels. Sends never block:
// a subscriber whose channel is full misses that event and is expected
// to resynchronize from a snapshot. The session publishes while holding
// its own lock so subscribers observe transitions in order.
type publisher struct {
	mu   sync.Mutex
	subs map[chan<- Event]struct{}
}

func newPublisher() *publisher {
	return &publisher{subs: make(map[chan<- Event]struct{})}
}

// subscribe registers ch and returns an idempotent removal func.
func (p *publisher) subscribe(ch chan<- Event) func() {
	p.mu.Lock()
	p.subs[ch] = struct{}{}
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, ch)
			p.mu.Unlock()
		})
	}
}

func (p *publisher) publish(evt Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

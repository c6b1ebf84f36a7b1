// Package engine runs live lucky draws: it samples a winning value,
// reveals it digit by digit on a timer-driven board, and keeps the
// session's winners log.
package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"luckydraw/internal/draw/rng"
	"luckydraw/internal/draw/roster"
)

// DefaultOwnerName is recorded for winners drawn from the range rather
// than the roster.
const DefaultOwnerName = "Random Guest"

// State is the session's lifecycle phase.
type State string

const (
	// StateIdle accepts draw requests.
	StateIdle State = "idle"
	// StateRevealing has slots spinning or stopping.
	StateRevealing State = "revealing"
	// StateSettling means every slot has stopped and the session is
	// waiting out the settle delay before recording the winner.
	StateSettling State = "settling"
)

// Mode says where the next draw's value will come from.
type Mode string

const (
	ModeRoster Mode = "roster"
	ModeRange  Mode = "range"
)

// Winner is one settled draw in the winners log.
type Winner struct {
	ID          string    `json:"id"`
	Value       string    `json:"value"`
	Owner       string    `json:"owner"`
	CompletedAt time.Time `json:"completed_at"`
}

// Snapshot is a point-in-time copy of everything a display needs.
// Slots is nil before the first draw and after a reset; once a draw
// settles it keeps showing the final board until the next draw starts.
type Snapshot struct {
	State           State    `json:"state"`
	Mode            Mode     `json:"mode"`
	Slots           []Slot   `json:"slots,omitempty"`
	Result          *Result  `json:"result,omitempty"`
	Winners         []Winner `json:"winners"`
	RosterSize      int      `json:"roster_size"`
	RosterRemaining int      `json:"roster_remaining"`
	ExcludedValues  int      `json:"excluded_values"`
}

// Session orchestrates draws one at a time. All mutation happens under a
// single lock; the timer callbacks that drive a reveal carry the draw
// generation they were scheduled for and become no-ops once it is stale,
// so a reset or a new draw silently retires every callback of the old
// one.
type Session struct {
	logger  *zap.Logger
	clock   Clock
	src     rng.Source
	sampler *Sampler
	pub     *publisher

	// initial is the settings value the session was created with; Reset
	// restores it, discarding operator updates.
	initial Settings

	mu        sync.Mutex
	settings  Settings
	ros       *roster.Roster
	excl      *ExclusionSet
	state     State
	board     *board
	pending   Result
	result    *Result
	winners   []Winner
	startedAt time.Time
	gen       uint64

	spinTimers  []Timer
	stopTimers  []Timer
	settleTimer Timer
}

// NewSession returns an idle session with an empty roster. Settings are
// validated once here and again on every update.
//
// Precondition: src, clk and logger are non-nil.
func NewSession(settings Settings, src rng.Source, clk Clock, logger *zap.Logger) (*Session, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		logger:   logger,
		clock:    clk,
		src:      src,
		sampler:  NewSampler(src, logger),
		pub:      newPublisher(),
		initial:  settings,
		settings: settings,
		ros:      roster.New(nil),
		excl:     NewExclusionSet(),
		state:    StateIdle,
	}, nil
}

// RequestDraw samples the next winner and starts its reveal. It returns
// ErrAlreadyRunning while a reveal is in flight and ErrExhausted when no
// eligible value remains; the session is unchanged in both cases.
//
// The reveal runs on the session's clock: every slot spins on the tick
// interval, slots stop right to left on the stagger schedule, and one
// settle delay after the leftmost slot stops the winner is recorded.
// Settings are copied at this point, so updates made during the reveal
// only affect the next draw.
func (s *Session) RequestDraw() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		s.logger.Debug("draw rejected, session busy", zap.String("state", string(s.state)))
		return ErrAlreadyRunning
	}
	res, err := s.sampler.Sample(s.ros, s.settings, s.excl)
	if err != nil {
		s.logger.Info("draw rejected", zap.Error(err))
		return err
	}

	cfg := s.settings
	s.gen++
	gen := s.gen
	s.state = StateRevealing
	s.board = newBoard(res.Value)
	s.pending = res
	s.result = nil
	s.startedAt = time.Now()

	s.spinTimers = make([]Timer, cfg.DigitCount)
	s.stopTimers = make([]Timer, cfg.DigitCount)
	for i := 0; i < cfg.DigitCount; i++ {
		s.scheduleSpinLocked(gen, i, cfg.TickInterval)
		s.stopTimers[i] = s.clock.AfterFunc(cfg.stopTime(i), func() { s.stopSlot(gen, i) })
	}
	s.settleTimer = s.clock.AfterFunc(cfg.settleTime(), func() { s.settle(gen) })

	mode := ModeRange
	if res.Owner != "" {
		mode = ModeRoster
	}
	s.logger.Info("draw started",
		zap.Uint64("draw", gen),
		zap.String("mode", string(mode)),
		zap.Int("digits", cfg.DigitCount),
	)
	s.pub.publish(Event{Type: EventRevealStarted, State: s.state, SlotIndex: -1, Slots: s.board.snapshot()})
	return nil
}

func (s *Session) scheduleSpinLocked(gen uint64, i int, interval time.Duration) {
	s.spinTimers[i] = s.clock.AfterFunc(interval, func() { s.spinSlot(gen, i, interval) })
}

// spinSlot shuffles slot i and chains the next tick. A stopped slot or a
// stale generation schedules nothing further.
func (s *Session) spinSlot(gen uint64, i int, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.board == nil || s.board.stopped(i) {
		return
	}
	s.board.spin(i, s.src.Intn(10))
	s.pub.publish(Event{Type: EventSlotSpun, State: s.state, SlotIndex: i, Slots: s.board.snapshot()})
	s.scheduleSpinLocked(gen, i, interval)
}

// stopSlot freezes slot i on its winning digit.
func (s *Session) stopSlot(gen uint64, i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.state != StateRevealing {
		return
	}
	s.stopRunLocked(i)
}

// stopRunLocked freezes every still-spinning slot from the rightmost down
// to slot i. Walking right to left here keeps the stop order correct even
// when several stop deadlines land on the same instant and the runtime
// fires their callbacks out of order. Stopping the leftmost slot moves
// the session to StateSettling.
func (s *Session) stopRunLocked(i int) {
	for j := len(s.board.slots) - 1; j >= i; j-- {
		if s.board.stopped(j) {
			continue
		}
		s.board.stop(j)
		if t := s.spinTimers[j]; t != nil {
			t.Stop()
		}
		if s.board.allStopped() {
			s.state = StateSettling
		}
		s.logger.Debug("slot stopped", zap.Int("slot", j), zap.Int("digit", s.board.slots[j].Digit))
		s.pub.publish(Event{Type: EventSlotStopped, State: s.state, SlotIndex: j, Slots: s.board.snapshot()})
	}
}

// settle records the pending result as a winner and returns the session
// to idle. It fires one settle delay after the leftmost slot's deadline;
// if that deadline's callback has not run yet, the remaining slots are
// stopped here first so the board is complete before the winner lands.
func (s *Session) settle(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	if s.state == StateRevealing {
		s.stopRunLocked(0)
	}
	if s.state != StateSettling {
		return
	}

	owner := s.pending.Owner
	if owner == "" {
		owner = DefaultOwnerName
	}
	w := Winner{
		ID:          uuid.NewString(),
		Value:       s.pending.Value,
		Owner:       owner,
		CompletedAt: time.Now(),
	}
	s.winners = append([]Winner{w}, s.winners...)
	s.result = &Result{Value: w.Value, Owner: w.Owner}
	s.pending = Result{}
	s.state = StateIdle

	s.logger.Info("draw settled",
		zap.Uint64("draw", gen),
		zap.String("value", w.Value),
		zap.String("owner", w.Owner),
		zap.Duration("took", time.Since(s.startedAt)),
		zap.Int("winners", len(s.winners)),
	)
	s.pub.publish(Event{Type: EventDrawSettled, State: s.state, SlotIndex: -1, Slots: s.board.snapshot(), Winner: &w})
}

// Reset cancels any in-flight reveal without recording it, refills the
// roster's remaining pool, clears the exclusion set, the winners log,
// and the board, and restores the settings the session was created with,
// discarding any operator updates. Roster entries keep their current
// load; re-ingest to change them.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The generation bump is what retires in-flight callbacks; stopping
	// the handles just releases their timers early.
	s.gen++
	s.cancelTimersLocked()
	s.state = StateIdle
	s.board = nil
	s.pending = Result{}
	s.result = nil
	s.winners = nil
	s.settings = s.initial
	s.ros.Restore()
	s.excl.Clear()

	s.logger.Info("session reset", zap.Int("roster", s.ros.Len()))
	s.pub.publish(Event{Type: EventSessionReset, State: s.state, SlotIndex: -1})
}

func (s *Session) cancelTimersLocked() {
	for _, t := range s.spinTimers {
		if t != nil {
			t.Stop()
		}
	}
	for _, t := range s.stopTimers {
		if t != nil {
			t.Stop()
		}
	}
	if s.settleTimer != nil {
		s.settleTimer.Stop()
	}
	s.spinTimers = nil
	s.stopTimers = nil
	s.settleTimer = nil
}

// ClearHistory empties the winners log. The roster and exclusion set are
// untouched, so cleared values stay burned until Reset.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.winners = nil
	s.logger.Info("winners log cleared")
}

// UpdateSettings swaps the settings used by future draws. A reveal in
// flight keeps the settings it started with.
func (s *Session) UpdateSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.logger.Info("settings updated",
		zap.Int("digits", settings.DigitCount),
		zap.Int("min", settings.MinValue),
		zap.Int("max", settings.MaxValue),
	)
	return nil
}

// Settings returns the settings the next draw will use.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// ReplaceRoster swaps in a new roster with its remaining pool full and
// returns the ingestion warnings. Flagged entries are kept; callers
// decide what to do about the warnings.
func (s *Session) ReplaceRoster(entries []roster.Entry) []string {
	s.mu.Lock()
	warnings := roster.Lint(entries, s.settings.DigitCount)
	s.ros = roster.New(entries)
	size := s.ros.Len()
	s.mu.Unlock()

	for _, w := range warnings {
		s.logger.Warn("roster entry flagged", zap.String("warning", w))
	}
	s.logger.Info("roster replaced", zap.Int("entries", size), zap.Int("flagged", len(warnings)))
	return warnings
}

// ClearRoster drops every roster entry, forcing range mode for all
// future draws.
func (s *Session) ClearRoster() {
	s.mu.Lock()
	s.ros = roster.New(nil)
	s.mu.Unlock()
	s.logger.Info("roster cleared")
}

// Snapshot copies the session state for observers.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	winners := make([]Winner, len(s.winners))
	copy(winners, s.winners)
	snap := Snapshot{
		State:           s.state,
		Mode:            s.modeLocked(),
		Winners:         winners,
		RosterSize:      s.ros.Len(),
		RosterRemaining: s.ros.Remaining(),
		ExcludedValues:  s.excl.Len(),
	}
	if s.board != nil {
		snap.Slots = s.board.snapshot()
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

// Winners returns the log, newest first.
func (s *Session) Winners() []Winner {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Winner, len(s.winners))
	copy(out, s.winners)
	return out
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers ch for transition events and returns an idempotent
// unsubscribe func. Use a buffered channel: when the buffer is full the
// engine drops the event for that subscriber rather than block a reveal.
func (s *Session) Subscribe(ch chan<- Event) func() {
	return s.pub.subscribe(ch)
}

func (s *Session) modeLocked() Mode {
	if s.ros.Remaining() > 0 {
		return ModeRoster
	}
	return ModeRange
}

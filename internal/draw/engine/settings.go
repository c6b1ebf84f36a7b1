package engine

import (
	"fmt"
	"strings"
	"time"
)

// Settings holds the knobs for a single draw: how many digit slots the
// board shows, the inclusive value range used when no roster entries
// remain, and the reveal cadence. A Session copies its Settings at the
// moment a draw starts, so updating them mid-reveal only affects the
// next draw.
type Settings struct {
	// DigitCount is the number of digit slots on the board. Values wider
	// than DigitCount digits are truncated to their rightmost digits when
	// formatted.
	DigitCount int

	// MinValue and MaxValue bound the inclusive sampling range used once
	// the roster is empty.
	MinValue int
	MaxValue int

	// TickInterval is the pause between digit shuffles on a spinning slot.
	TickInterval time.Duration

	// GeneratingTime is how long all slots spin before the rightmost one
	// stops.
	GeneratingTime time.Duration

	// DigitStopDelay is the pause between one slot stopping and the slot
	// to its left stopping. Zero makes all slots stop together, still in
	// right-to-left order.
	DigitStopDelay time.Duration

	// SettleDelay is the pause between the leftmost slot stopping and the
	// draw being recorded.
	SettleDelay time.Duration
}

// maxRangeValue bounds MaxValue so rangeSize's size arithmetic cannot
// overflow int.
const maxRangeValue = 1_000_000_000_000_000_000

// Validate reports every problem with the settings in a single error.
func (s Settings) Validate() error {
	var problems []string
	if s.DigitCount < 1 {
		problems = append(problems, fmt.Sprintf("digit count must be at least 1, got %d", s.DigitCount))
	}
	if s.MinValue < 0 {
		problems = append(problems, fmt.Sprintf("minimum value must not be negative, got %d", s.MinValue))
	}
	if s.MaxValue < s.MinValue {
		problems = append(problems, fmt.Sprintf("maximum value %d is below minimum value %d", s.MaxValue, s.MinValue))
	}
	if s.MaxValue > maxRangeValue {
		problems = append(problems, fmt.Sprintf("maximum value must not exceed %d, got %d", maxRangeValue, s.MaxValue))
	}
	if s.TickInterval <= 0 {
		problems = append(problems, fmt.Sprintf("tick interval must be positive, got %s", s.TickInterval))
	}
	if s.GeneratingTime < 0 {
		problems = append(problems, fmt.Sprintf("generating time must not be negative, got %s", s.GeneratingTime))
	}
	if s.DigitStopDelay < 0 {
		problems = append(problems, fmt.Sprintf("digit stop delay must not be negative, got %s", s.DigitStopDelay))
	}
	if s.SettleDelay < 0 {
		problems = append(problems, fmt.Sprintf("settle delay must not be negative, got %s", s.SettleDelay))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid draw settings: %s", strings.Join(problems, "; "))
	}
	return nil
}

// FormatValue renders v as exactly DigitCount characters: zero-padded on
// the left when v is narrow, truncated to the rightmost digits when v is
// wide.
func (s Settings) FormatValue(v int) string {
	formatted := fmt.Sprintf("%0*d", s.DigitCount, v)
	if len(formatted) > s.DigitCount {
		formatted = formatted[len(formatted)-s.DigitCount:]
	}
	return formatted
}

// rangeSize is the number of distinct values in [MinValue, MaxValue].
func (s Settings) rangeSize() int {
	return s.MaxValue - s.MinValue + 1
}

// stopTime is the offset from reveal start at which slot i stops. Slots
// stop right to left, so the rightmost slot stops first.
func (s Settings) stopTime(i int) time.Duration {
	return s.GeneratingTime + time.Duration(s.DigitCount-1-i)*s.DigitStopDelay
}

// settleTime is the offset from reveal start at which the draw is
// recorded: one settle delay after the leftmost slot stops.
func (s Settings) settleTime() time.Duration {
	return s.stopTime(0) + s.SettleDelay
}

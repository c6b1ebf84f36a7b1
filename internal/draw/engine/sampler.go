package engine

import (
	"go.uber.org/zap"

	"luckydraw/internal/draw/rng"
	"luckydraw/internal/draw/roster"
)

// maxSampleAttempts bounds the rejection loop in range mode. A draw that
// cannot find an unused value within this many attempts is reported as
// exhausted even if a free value technically remains, which keeps a
// pathologically dense exclusion set from stalling the caller.
const maxSampleAttempts = 1000

// Result is a sampled value in display form. Owner is empty for range
// draws; the session substitutes a fallback name when it records the
// winner.
type Result struct {
	Value string `json:"value"`
	Owner string `json:"owner,omitempty"`
}

// Sampler picks winning values, preferring roster entries and falling
// back to the configured range once the roster is spent.
type Sampler struct {
	src    rng.Source
	logger *zap.Logger
}

// NewSampler returns a Sampler drawing randomness from src.
//
// Precondition: src and logger are non-nil.
func NewSampler(src rng.Source, logger *zap.Logger) *Sampler {
	return &Sampler{src: src, logger: logger}
}

// Sample picks the next winning value and burns it from the pool.
//
// While roster entries remain, one is removed at random and its formatted
// number becomes the value. Roster draws ignore excl, so a roster number
// may repeat a value drawn earlier from the range.
//
// Once the roster is empty, values are drawn uniformly from
// [cfg.MinValue, cfg.MaxValue] and rejected while their formatted form is
// already in excl. The accepted value joins excl immediately, so a draw
// cancelled mid-reveal stays burned until the session is reset.
//
// Postcondition: on success, either the roster shrank by one entry or
// excl grew by one value.
func (s *Sampler) Sample(ros *roster.Roster, cfg Settings, excl *ExclusionSet) (Result, error) {
	if entry, ok := ros.TakeRandom(s.src); ok {
		res := Result{Value: cfg.FormatValue(entry.Number), Owner: entry.Owner}
		s.logger.Debug("sampled roster entry",
			zap.String("value", res.Value),
			zap.String("owner", res.Owner),
			zap.Int("remaining", ros.Remaining()),
		)
		return res, nil
	}

	if excl.Len() >= cfg.rangeSize() {
		return Result{}, ErrExhausted
	}
	for attempt := 1; attempt <= maxSampleAttempts; attempt++ {
		value := cfg.FormatValue(cfg.MinValue + s.src.Intn(cfg.rangeSize()))
		if excl.Contains(value) {
			continue
		}
		excl.Add(value)
		s.logger.Debug("sampled range value",
			zap.String("value", value),
			zap.Int("attempts", attempt),
			zap.Int("excluded", excl.Len()),
		)
		return Result{Value: value}, nil
	}
	s.logger.Debug("sample retry bound exceeded",
		zap.Int("attempts", maxSampleAttempts),
		zap.Int("excluded", excl.Len()),
	)
	return Result{}, ErrExhausted
}

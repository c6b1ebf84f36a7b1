package engine_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"luckydraw/internal/draw/engine"
	"luckydraw/internal/draw/rng"
	"luckydraw/internal/draw/roster"
)

func TestSampler_PrefersRosterAndIgnoresExclusions(t *testing.T) {
	cfg := engine.Settings{DigitCount: 2, MinValue: 0, MaxValue: 50}
	ros := roster.New([]roster.Entry{{Number: 7, Owner: "Ada"}})
	excl := engine.NewExclusionSet()
	excl.Add("07")

	s := engine.NewSampler(&pickSource{picks: []int{0}}, zap.NewNop())
	res, err := s.Sample(ros, cfg, excl)
	require.NoError(t, err)
	assert.Equal(t, "07", res.Value)
	assert.Equal(t, "Ada", res.Owner)
	assert.Equal(t, 0, ros.Remaining())
	assert.Equal(t, 1, excl.Len(), "roster draws must not touch the exclusion set")
}

func TestSampler_RangeSkipsExcludedValues(t *testing.T) {
	cfg := engine.Settings{DigitCount: 1, MinValue: 0, MaxValue: 4}
	excl := engine.NewExclusionSet()
	excl.Add("0")

	s := engine.NewSampler(&pickSource{picks: []int{0, 1}}, zap.NewNop())
	res, err := s.Sample(roster.New(nil), cfg, excl)
	require.NoError(t, err)
	assert.Equal(t, "1", res.Value)
	assert.Empty(t, res.Owner)
	assert.Equal(t, 2, excl.Len())
	assert.True(t, excl.Contains("1"))
}

func TestSampler_ExhaustedWhenRangeFullyBurned(t *testing.T) {
	cfg := engine.Settings{DigitCount: 1, MinValue: 0, MaxValue: 1}
	excl := engine.NewExclusionSet()
	excl.Add("0")
	excl.Add("1")

	s := engine.NewSampler(rng.NewCryptoSource(), zap.NewNop())
	_, err := s.Sample(roster.New(nil), cfg, excl)
	require.ErrorIs(t, err, engine.ErrExhausted)
}

func TestSampler_RetryBoundTreatsDenseExclusionAsExhausted(t *testing.T) {
	// Every value in [0, 99] collapses to a single digit on a one-digit
	// board, and all ten digits are excluded. The raw range is far from
	// burned, so only the retry bound can report this as exhausted.
	cfg := engine.Settings{DigitCount: 1, MinValue: 0, MaxValue: 99}
	excl := engine.NewExclusionSet()
	for d := 0; d <= 9; d++ {
		excl.Add(strconv.Itoa(d))
	}

	s := engine.NewSampler(rng.NewCryptoSource(), zap.NewNop())
	_, err := s.Sample(roster.New(nil), cfg, excl)
	require.ErrorIs(t, err, engine.ErrExhausted)
	assert.Equal(t, 10, excl.Len())
}

func TestSampler_FallsBackToRangeOnceRosterIsSpent(t *testing.T) {
	cfg := engine.Settings{DigitCount: 2, MinValue: 0, MaxValue: 50}
	ros := roster.New([]roster.Entry{{Number: 31, Owner: "Cole"}})
	excl := engine.NewExclusionSet()
	s := engine.NewSampler(&pickSource{picks: []int{0, 9}}, zap.NewNop())

	first, err := s.Sample(ros, cfg, excl)
	require.NoError(t, err)
	assert.Equal(t, "31", first.Value)
	assert.Equal(t, "Cole", first.Owner)

	second, err := s.Sample(ros, cfg, excl)
	require.NoError(t, err)
	assert.Equal(t, "09", second.Value)
	assert.Empty(t, second.Owner)
	assert.Equal(t, 1, excl.Len())
}

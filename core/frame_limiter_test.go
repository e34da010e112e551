package core

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(strategy FrameRateLimitStrategy, fps uint32) (*FrameLimiter, *fakeClock, *[]time.Duration, *int) {
	fc := &fakeClock{t: time.Unix(100, 0)}
	var sleeps []time.Duration
	yields := 0
	l := NewFrameLimiter(strategy, fps)
	l.now = fc.now
	l.sleep = func(d time.Duration) {
		sleeps = append(sleeps, d)
		fc.advance(d)
	}
	l.yield = func() {
		yields++
		fc.advance(time.Millisecond)
	}
	return l, fc, &sleeps, &yields
}

func TestFrameLimiterSleep(t *testing.T) {
	l, fc, sleeps, _ := newTestLimiter(FrameRateLimitStrategy{Kind: Sleep}, 50)
	l.Start()
	fc.advance(5 * time.Millisecond)
	l.Wait()

	require.Len(t, *sleeps, 1)
	assert.Equal(t, 15*time.Millisecond, (*sleeps)[0])

	fc.advance(30 * time.Millisecond)
	l.Wait()
	assert.Len(t, *sleeps, 1, "late frames do not sleep")
}

func TestFrameLimiterYield(t *testing.T) {
	l, _, sleeps, yields := newTestLimiter(FrameRateLimitStrategy{Kind: Yield}, 100)
	l.Start()
	l.Wait()

	assert.Empty(t, *sleeps)
	assert.Equal(t, 10, *yields)
}

func TestFrameLimiterSleepAndYield(t *testing.T) {
	l, _, sleeps, yields := newTestLimiter(FrameRateLimitStrategy{Kind: SleepAndYield, Margin: 3 * time.Millisecond}, 100)
	l.Start()
	l.Wait()

	require.Len(t, *sleeps, 1)
	assert.Equal(t, 7*time.Millisecond, (*sleeps)[0])
	assert.Equal(t, 3, *yields)
}

func TestFrameLimiterUnlimited(t *testing.T) {
	l, _, sleeps, yields := newTestLimiter(FrameRateLimitStrategy{Kind: Sleep}, 0)
	assert.Equal(t, Unlimited, l.Strategy().Kind)
	l.Start()
	l.Wait()
	assert.Empty(t, *sleeps)
	assert.Zero(t, *yields)
}

func TestFrameLimiterFromConfig(t *testing.T) {
	l, err := NewFrameLimiterFromConfig(FrameRateLimitConfig{Strategy: "sleep_and_yield", MarginMillis: 2})
	require.NoError(t, err)
	assert.Equal(t, uint32(DefaultFPS), l.FPS())
	assert.Equal(t, SleepAndYield, l.Strategy().Kind)
	assert.Equal(t, 2*time.Millisecond, l.Strategy().Margin)

	_, err = NewFrameLimiterFromConfig(FrameRateLimitConfig{Strategy: "warp"})
	assert.Error(t, err)

	assert.Equal(t, "sleep", Sleep.String())
	k, err := ParseLimitKind("Unlimited")
	require.NoError(t, err)
	assert.Equal(t, Unlimited, k)
}

func TestFrameLimiterLogsRateChanges(t *testing.T) {
	var buf bytes.Buffer
	l := DefaultFrameLimiter()
	l.Logger = slog.New(slog.NewTextHandler(&buf, nil))

	l.SetRate(FrameRateLimitStrategy{Kind: Sleep}, 30)
	assert.Contains(t, buf.String(), "frame limit changed")
	assert.Contains(t, buf.String(), "strategy=sleep fps=30 previous_strategy=yield previous_fps=144")

	l.SetRate(FrameRateLimitStrategy{Kind: Sleep}, 30)
	assert.Equal(t, 1, strings.Count(buf.String(), "frame limit changed"), "unchanged rates are not logged")
}

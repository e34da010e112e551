package core

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"
)

// LimitKind selects how a FrameLimiter spends the rest of a frame.
type LimitKind uint8

const (
	// Unlimited returns immediately.
	Unlimited LimitKind = iota
	// Yield spins, yielding the processor, until the frame is over.
	Yield
	// Sleep sleeps for the remainder of the frame.
	Sleep
	// SleepAndYield sleeps until Margin before the deadline, then yields.
	SleepAndYield
)

func (k LimitKind) String() string {
	switch k {
	case Unlimited:
		return "unlimited"
	case Yield:
		return "yield"
	case Sleep:
		return "sleep"
	case SleepAndYield:
		return "sleep_and_yield"
	default:
		return fmt.Sprintf("LimitKind(%d)", uint8(k))
	}
}

// ParseLimitKind parses the names printed by LimitKind.String.
func ParseLimitKind(s string) (LimitKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unlimited":
		return Unlimited, nil
	case "", "yield":
		return Yield, nil
	case "sleep":
		return Sleep, nil
	case "sleep_and_yield", "sleepandyield":
		return SleepAndYield, nil
	}
	return 0, fmt.Errorf("core: unknown frame limit strategy %q", s)
}

// FrameRateLimitStrategy is a LimitKind plus the yield margin used by
// SleepAndYield.
type FrameRateLimitStrategy struct {
	Kind   LimitKind
	Margin time.Duration
}

// Default frame limiting.
const (
	DefaultFPS = 144
)

// FrameRateLimitConfig is the config-file form of a frame limiter.
type FrameRateLimitConfig struct {
	Strategy string `toml:"strategy" yaml:"strategy"`
	FPS      uint32 `toml:"fps" yaml:"fps"`
	// MarginMillis is the yield margin for sleep_and_yield.
	MarginMillis uint32 `toml:"margin_ms" yaml:"margin_ms"`
}

// LimitStrategy converts the config into a strategy.
func (c FrameRateLimitConfig) LimitStrategy() (FrameRateLimitStrategy, error) {
	kind, err := ParseLimitKind(c.Strategy)
	if err != nil {
		return FrameRateLimitStrategy{}, err
	}
	return FrameRateLimitStrategy{
		Kind:   kind,
		Margin: time.Duration(c.MarginMillis) * time.Millisecond,
	}, nil
}

// FrameLimiter caps the frame rate. Call Start once before the loop and
// Wait at the end of each frame.
type FrameLimiter struct {
	// Logger, when set, receives a line for every rate change.
	Logger *slog.Logger

	strategy      FrameRateLimitStrategy
	fps           uint32
	frameDuration time.Duration
	last          time.Time

	now   func() time.Time
	sleep func(time.Duration)
	yield func()
}

// NewFrameLimiter creates a limiter. fps of zero means Unlimited.
func NewFrameLimiter(strategy FrameRateLimitStrategy, fps uint32) *FrameLimiter {
	l := &FrameLimiter{
		now:   time.Now,
		sleep: time.Sleep,
		yield: runtime.Gosched,
	}
	l.SetRate(strategy, fps)
	return l
}

// DefaultFrameLimiter yields at DefaultFPS.
func DefaultFrameLimiter() *FrameLimiter {
	return NewFrameLimiter(FrameRateLimitStrategy{Kind: Yield}, DefaultFPS)
}

// NewFrameLimiterFromConfig builds a limiter from config. A zero FPS
// selects DefaultFPS.
func NewFrameLimiterFromConfig(cfg FrameRateLimitConfig) (*FrameLimiter, error) {
	strategy, err := cfg.LimitStrategy()
	if err != nil {
		return nil, err
	}
	fps := cfg.FPS
	if fps == 0 {
		fps = DefaultFPS
	}
	return NewFrameLimiter(strategy, fps), nil
}

// SetRate changes the strategy and target rate.
func (l *FrameLimiter) SetRate(strategy FrameRateLimitStrategy, fps uint32) {
	if fps == 0 {
		strategy.Kind = Unlimited
	}
	if l.Logger != nil && (strategy != l.strategy || fps != l.fps) {
		l.Logger.Info("frame limit changed", "strategy", strategy.Kind, "fps", fps,
			"previous_strategy", l.strategy.Kind, "previous_fps", l.fps)
	}
	l.strategy = strategy
	l.fps = fps
	if fps > 0 {
		l.frameDuration = time.Second / time.Duration(fps)
	} else {
		l.frameDuration = 0
	}
}

// Strategy returns the active strategy.
func (l *FrameLimiter) Strategy() FrameRateLimitStrategy { return l.strategy }

// FPS returns the target rate.
func (l *FrameLimiter) FPS() uint32 { return l.fps }

// FrameDuration returns the target duration of one frame.
func (l *FrameLimiter) FrameDuration() time.Duration { return l.frameDuration }

// Start marks the beginning of the first frame.
func (l *FrameLimiter) Start() {
	l.last = l.now()
}

// Wait blocks until the current frame has lasted FrameDuration, according
// to the strategy, and starts the next frame.
func (l *FrameLimiter) Wait() {
	deadline := l.last.Add(l.frameDuration)

	switch l.strategy.Kind {
	case Yield:
		l.yieldUntil(deadline)
	case Sleep:
		if d := deadline.Sub(l.now()); d > 0 {
			l.sleep(d)
		}
	case SleepAndYield:
		if d := deadline.Sub(l.now()) - l.strategy.Margin; d > 0 {
			l.sleep(d)
		}
		l.yieldUntil(deadline)
	}

	l.last = l.now()
}

func (l *FrameLimiter) yieldUntil(deadline time.Time) {
	for l.now().Before(deadline) {
		l.yield()
	}
}

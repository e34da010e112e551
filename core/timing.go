package core

import "time"

// DefaultFixedTime is the default fixed-update step.
const DefaultFixedTime = time.Second / 60

// Time is the frame clock resource. Scaled values follow TimeScale; real
// values do not. The application updates it once per frame.
type Time struct {
	deltaTime         time.Duration
	deltaRealTime     time.Duration
	fixedTime         time.Duration
	frameNumber       uint64
	absoluteTime      time.Duration
	absoluteRealTime  time.Duration
	timeScale         float32
	fixedAccumulator  time.Duration
	fixedUpdateFrames uint64
}

// NewTime returns a clock with time scale 1 and the default fixed step.
func NewTime() Time {
	return Time{
		fixedTime: DefaultFixedTime,
		timeScale: 1,
	}
}

// DeltaSeconds returns the scaled duration of the last frame in seconds.
func (t *Time) DeltaSeconds() float32 { return float32(t.deltaTime.Seconds()) }

// DeltaTime returns the scaled duration of the last frame.
func (t *Time) DeltaTime() time.Duration { return t.deltaTime }

// DeltaRealSeconds returns the unscaled duration of the last frame in seconds.
func (t *Time) DeltaRealSeconds() float32 { return float32(t.deltaRealTime.Seconds()) }

// DeltaRealTime returns the unscaled duration of the last frame.
func (t *Time) DeltaRealTime() time.Duration { return t.deltaRealTime }

// FixedSeconds returns the fixed-update step in seconds.
func (t *Time) FixedSeconds() float32 { return float32(t.fixedTime.Seconds()) }

// FixedTime returns the fixed-update step.
func (t *Time) FixedTime() time.Duration { return t.fixedTime }

// FrameNumber returns the number of completed frames.
func (t *Time) FrameNumber() uint64 { return t.frameNumber }

// AbsoluteTime returns the scaled time since start.
func (t *Time) AbsoluteTime() time.Duration { return t.absoluteTime }

// AbsoluteTimeSeconds is AbsoluteTime in seconds.
func (t *Time) AbsoluteTimeSeconds() float64 { return t.absoluteTime.Seconds() }

// AbsoluteRealTime returns the unscaled time since start.
func (t *Time) AbsoluteRealTime() time.Duration { return t.absoluteRealTime }

// TimeScale returns the factor applied to real time.
func (t *Time) TimeScale() float32 { return t.timeScale }

// FixedUpdates returns how many fixed steps have run in total.
func (t *Time) FixedUpdates() uint64 { return t.fixedUpdateFrames }

// SetDeltaSeconds is SetDeltaTime in seconds.
func (t *Time) SetDeltaSeconds(secs float32) {
	t.SetDeltaTime(time.Duration(float64(secs) * float64(time.Second)))
}

// SetDeltaTime records the real duration of the frame that just ended and
// advances every clock. Negative durations are treated as zero.
func (t *Time) SetDeltaTime(d time.Duration) {
	d = max(d, 0)
	scaled := time.Duration(float64(d) * float64(t.timeScale))

	t.deltaRealTime = d
	t.deltaTime = scaled
	t.absoluteRealTime += d
	t.absoluteTime += scaled
	t.fixedAccumulator += scaled
}

// SetTimeScale sets the scale applied to subsequent frames. Negative
// scales are clamped to zero.
func (t *Time) SetTimeScale(scale float32) {
	t.timeScale = max(scale, 0)
}

// SetFixedSeconds is SetFixedTime in seconds.
func (t *Time) SetFixedSeconds(secs float32) {
	t.SetFixedTime(time.Duration(float64(secs) * float64(time.Second)))
}

// SetFixedTime sets the fixed-update step. Non-positive steps are ignored.
func (t *Time) SetFixedTime(d time.Duration) {
	if d > 0 {
		t.fixedTime = d
	}
}

// IncrementFrameNumber marks the end of a frame.
func (t *Time) IncrementFrameNumber() {
	t.frameNumber++
}

// StepFixedUpdate consumes one fixed step from the accumulator and reports
// whether a fixed update should run.
func (t *Time) StepFixedUpdate() bool {
	if t.fixedAccumulator < t.fixedTime {
		return false
	}
	t.fixedAccumulator -= t.fixedTime
	t.fixedUpdateFrames++
	return true
}

// DropFixedBacklog discards the whole fixed steps left in the accumulator,
// keeping the partial step, and returns the time dropped.
func (t *Time) DropFixedBacklog() time.Duration {
	kept := t.fixedAccumulator % t.fixedTime
	dropped := t.fixedAccumulator - kept
	t.fixedAccumulator = kept
	return dropped
}

// FixedAlpha returns how far the accumulator is into the next fixed step,
// in [0, 1), for interpolating rendered state.
func (t *Time) FixedAlpha() float32 {
	return float32(float64(t.fixedAccumulator) / float64(t.fixedTime))
}

// Stopwatch measures elapsed time across Start/Stop pairs.
type Stopwatch struct {
	state   stopwatchState
	elapsed time.Duration
	started time.Time
	now     func() time.Time
}

type stopwatchState uint8

const (
	stopwatchWaiting stopwatchState = iota
	stopwatchStarted
	stopwatchEnded
)

// NewStopwatch returns a stopwatch in the waiting state.
func NewStopwatch() *Stopwatch {
	return &Stopwatch{now: time.Now}
}

func (s *Stopwatch) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Elapsed returns the accumulated time, including the running interval.
func (s *Stopwatch) Elapsed() time.Duration {
	switch s.state {
	case stopwatchStarted:
		return s.elapsed + s.clock().Sub(s.started)
	case stopwatchEnded:
		return s.elapsed
	default:
		return 0
	}
}

// Running reports whether the stopwatch is started.
func (s *Stopwatch) Running() bool { return s.state == stopwatchStarted }

// Start resumes timing. Starting a running stopwatch does nothing.
func (s *Stopwatch) Start() {
	if s.state == stopwatchStarted {
		return
	}
	s.started = s.clock()
	s.state = stopwatchStarted
}

// Stop pauses timing and keeps the accumulated time.
func (s *Stopwatch) Stop() {
	if s.state != stopwatchStarted {
		return
	}
	s.elapsed += s.clock().Sub(s.started)
	s.state = stopwatchEnded
}

// Restart clears the accumulated time and starts again.
func (s *Stopwatch) Restart() {
	s.elapsed = 0
	s.state = stopwatchWaiting
	s.Start()
}

// Reset clears the stopwatch back to the waiting state.
func (s *Stopwatch) Reset() {
	s.elapsed = 0
	s.state = stopwatchWaiting
}

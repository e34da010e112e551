// Package core holds the engine-wide resources every application installs:
// the shared ThreadPool, frame Time, a Stopwatch, and the FrameLimiter.
// Transform components and their propagation system live in core/transform.
package core

package engine

import (
	"math"
	"time"
)

// axisState integrates the continuous VR-thumbstick axis into scroll deltas.
// Raw samples are exponentially smoothed, pushed through a power-law
// acceleration curve, scaled by frame time, and accumulated until the motion
// exceeds a minimum delta before committing - tiny stick noise never reaches
// the scroll position.
type axisState struct {
	smoothed float64
	pending  float64
}

// sample consumes one per-frame axis reading and returns the scroll delta to
// commit this frame (0 while below the commit threshold).
func (a *axisState) sample(raw float64, dt time.Duration, t Tuning) float64 {
	a.smoothed = t.AxisSmoothing*a.smoothed + (1-t.AxisSmoothing)*raw

	accel := math.Pow(math.Abs(a.smoothed), t.AxisAccelPower)
	a.pending += math.Copysign(accel, a.smoothed) * t.AxisMaxSpeed * dt.Seconds()

	if math.Abs(a.pending) < t.MinScrollDelta {
		return 0
	}
	delta := a.pending
	a.pending = 0
	return delta
}

// reset clears smoothing and accumulation state, e.g. after a programmatic
// jump.
func (a *axisState) reset() {
	a.smoothed = 0
	a.pending = 0
}

// wheelDelta converts a discrete wheel event into a scroll delta.
func wheelDelta(delta float64, t Tuning) float64 {
	return delta * t.WheelSpeed
}

// keyDelta converts a discrete key press into a scroll delta. Positive
// direction scrolls forward, deeper into the timeline; one signed convention
// for every input kind.
func keyDelta(direction int, t Tuning) float64 {
	if direction > 0 {
		return t.KeyStep
	}
	if direction < 0 {
		return -t.KeyStep
	}
	return 0
}

// clampScroll clamps a scroll position into [0, totalHeight].
func clampScroll(pos, totalHeight float64) float64 {
	if pos < 0 || totalHeight <= 0 {
		return 0
	}
	return math.Min(pos, totalHeight)
}

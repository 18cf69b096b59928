package engine

import (
	"log/slog"

	"github.com/ZanzyTHEbar/virtual-photowall/vpw/config"
)

// Tuning holds the scroll/visibility knobs of the engine. Distances are in
// scene units, speeds in scene units per second.
type Tuning struct {
	LookBehind     float64 // visibility margin above the camera
	LookAhead      float64 // visibility margin below the camera
	EyeLevel       float64 // default viewing height added on programmatic jumps
	AnchorEpsilon  float64 // minimum offset delta worth correcting for
	WheelSpeed     float64 // scroll units per wheel delta unit
	KeyStep        float64 // scroll units per discrete key press
	AxisSmoothing  float64 // exponential smoothing factor for controller axis
	AxisAccelPower float64 // power-law acceleration exponent
	AxisMaxSpeed   float64 // full-deflection axis scroll speed
	MinScrollDelta float64 // sub-threshold axis motion accumulates below this
	MoreThreshold  float64 // flat-list: distance from the end that triggers RequestMore
}

// DefaultTuning returns sensible defaults for the timeline engine.
func DefaultTuning() Tuning {
	return Tuning{
		LookBehind:     10.0,
		LookAhead:      20.0,
		EyeLevel:       1.6,
		AnchorEpsilon:  0.001,
		WheelSpeed:     0.002,
		KeyStep:        0.75,
		AxisSmoothing:  0.3,
		AxisAccelPower: 1.5,
		AxisMaxSpeed:   4.0,
		MinScrollDelta: 0.001,
		MoreThreshold:  2.0,
	}
}

// TuningFromConfig converts the viper-backed engine configuration.
func TuningFromConfig(c config.EngineConfig) Tuning {
	return Tuning{
		LookBehind:     c.LookBehind,
		LookAhead:      c.LookAhead,
		EyeLevel:       c.EyeLevel,
		AnchorEpsilon:  c.AnchorEpsilon,
		WheelSpeed:     c.WheelSpeed,
		KeyStep:        c.KeyStep,
		AxisSmoothing:  c.AxisSmoothing,
		AxisAccelPower: c.AxisAccelPower,
		AxisMaxSpeed:   c.AxisMaxSpeed,
		MinScrollDelta: c.MinScrollDelta,
		MoreThreshold:  c.MoreThreshold,
	}
}

// Option allows for customization of the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTuning overrides the default tuning.
func WithTuning(t Tuning) Option {
	return func(e *Engine) {
		e.tuning = t
	}
}

// WithLoader attaches the external bucket loader.
func WithLoader(loader BucketLoader) Option {
	return func(e *Engine) {
		e.loader = loader
	}
}

// WithPageSource attaches the flat-list page source.
func WithPageSource(pages PageSource) Option {
	return func(e *Engine) {
		e.pages = pages
	}
}

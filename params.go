package beamformer

import (
	"math"
	"sync/atomic"
)

// Parameters holds the live array parameters. A control goroutine (UI, MIDI,
// automation) writes them at any time; the audio thread takes one Snapshot
// per block. Every access is a single atomic load or store, so the audio
// thread never blocks.
//
// Setters clamp out-of-range values into their declared ranges.
type Parameters struct {
	microphones atomic.Int32
	spacing     atomic.Uint64 // float64 bits
	direction   atomic.Int32
}

// NewParameters returns parameters set to the defaults.
func NewParameters() *Parameters {
	p := &Parameters{}
	p.SetMicrophones(DefaultMicrophones)
	p.SetSpacing(DefaultSpacing)
	p.SetDirection(DefaultDirection)
	return p
}

// Microphones returns the number of microphones in the array.
func (p *Parameters) Microphones() int {
	return int(p.microphones.Load())
}

// SetMicrophones sets the microphone count, clamped to [MinMicrophones, MaxMicrophones].
// Changing the count clears the delay history on the next block.
func (p *Parameters) SetMicrophones(n int) {
	p.microphones.Store(int32(clampInt(n, MinMicrophones, MaxMicrophones)))
}

// Spacing returns the inter-microphone distance in meters.
func (p *Parameters) Spacing() float64 {
	return math.Float64frombits(p.spacing.Load())
}

// SetSpacing sets the inter-microphone distance in meters, clamped to
// [MinSpacing, MaxSpacing]. NaN is ignored.
func (p *Parameters) SetSpacing(meters float64) {
	if math.IsNaN(meters) {
		return
	}
	meters = max(MinSpacing, min(MaxSpacing, meters))
	p.spacing.Store(math.Float64bits(meters))
}

// Direction returns the direction of arrival in degrees.
func (p *Parameters) Direction() int {
	return int(p.direction.Load())
}

// SetDirection sets the direction of arrival in degrees, clamped to
// [MinDirection, MaxDirection].
func (p *Parameters) SetDirection(degrees int) {
	p.direction.Store(int32(clampInt(degrees, MinDirection, MaxDirection)))
}

// Set stores all three values from cfg.
func (p *Parameters) Set(cfg ArrayConfig) {
	p.SetMicrophones(cfg.Microphones)
	p.SetSpacing(cfg.Spacing)
	p.SetDirection(cfg.Direction)
}

// Snapshot returns the current values. The three loads are independent, so a
// snapshot taken during a concurrent Set may mix old and new values; each
// value on its own is always in range.
func (p *Parameters) Snapshot() ArrayConfig {
	return ArrayConfig{
		Microphones: p.Microphones(),
		Spacing:     p.Spacing(),
		Direction:   p.Direction(),
	}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

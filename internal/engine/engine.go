// Package engine implements the delay-and-sum beamforming core.
package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/tphakala/go-audio-beamformer/internal/delayline"
	"github.com/tphakala/go-audio-beamformer/internal/simdops"
)

// OverflowPolicy decides what happens when a computed delay exceeds the
// delay line capacity.
type OverflowPolicy int

const (
	// OverflowClamp limits the delay to the ring capacity.
	OverflowClamp OverflowPolicy = iota

	// OverflowWrap lets the read position wrap around the ring, as the
	// reference implementation does. The output then contains samples from
	// the wrong block.
	OverflowWrap
)

// String returns the policy name used in profiles and on the command line.
func (p OverflowPolicy) String() string {
	switch p {
	case OverflowClamp:
		return "clamp"
	case OverflowWrap:
		return "wrap"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

// Options configures an Engine.
type Options struct {
	// SpeedOfSound in m/s. Zero selects DefaultSpeedOfSound.
	SpeedOfSound float64

	// AngleMode selects literal (reference) or degree-correct steering.
	AngleMode AngleMode

	// Capacity fixes the delay line size in samples. Zero derives it from
	// the sample rate with CapacityFor.
	Capacity int

	// Overflow selects the behavior for delays larger than Capacity.
	Overflow OverflowPolicy
}

// Stats is a point-in-time copy of the engine counters.
type Stats struct {
	Blocks    uint64 // blocks processed
	Resets    uint64 // delay line resets, including the initial one
	Overflows uint64 // channel delays that exceeded the capacity
	Latency   int    // largest delay applied in the last block
	MaxDelay  int    // signed array-wide delay of the last block
	Steering  SteeringCase
}

// counters are written by the audio thread and read by any goroutine.
type counters struct {
	blocks    atomic.Uint64
	resets    atomic.Uint64
	overflows atomic.Uint64
	latency   atomic.Int64
	maxDelay  atomic.Int64
	steering  atomic.Int32
}

// Engine computes per-channel steering delays for every block, realigns the
// channels through a delay line bank and averages them into channel 0.
//
// Type parameter F must be float32 or float64.
//
// An Engine is driven by a single audio thread. Process never allocates
// unless the microphone count changed since the previous block.
type Engine[F simdops.Float] struct {
	geom          Geometry
	fixedCapacity int
	capacity      int
	overflow      OverflowPolicy

	bank       *delayline.Bank[F]
	configured int   // microphone count the bank is sized for
	delays     []int // per-channel delay scratch, len == configured

	stats counters
}

// New creates an engine for the given sample rate. The delay lines are sized
// lazily on the first block, or eagerly by Prepare.
func New[F simdops.Float](sampleRate float64, opts Options) (*Engine[F], error) {
	if opts.SpeedOfSound == 0 {
		opts.SpeedOfSound = DefaultSpeedOfSound
	}
	if opts.SpeedOfSound < 0 {
		return nil, fmt.Errorf("speed of sound must be positive: %f", opts.SpeedOfSound)
	}
	if opts.Capacity < 0 {
		return nil, fmt.Errorf("delay capacity must not be negative: %d", opts.Capacity)
	}

	e := &Engine[F]{
		geom: Geometry{
			SpeedOfSound: opts.SpeedOfSound,
			AngleMode:    opts.AngleMode,
		},
		fixedCapacity: opts.Capacity,
		overflow:      opts.Overflow,
		bank:          &delayline.Bank[F]{},
		configured:    unsetMicrophones,
	}
	if err := e.setSampleRate(sampleRate); err != nil {
		return nil, err
	}
	return e, nil
}

// Prepare sets the sample rate and sizes the delay lines for microphones
// channels, so the first block after it runs without allocating. Pass a
// negative count to defer sizing to the first block.
func (e *Engine[F]) Prepare(sampleRate float64, microphones int) error {
	if err := e.setSampleRate(sampleRate); err != nil {
		return err
	}
	e.configured = unsetMicrophones
	if microphones >= 0 {
		e.reset(microphones)
	}
	return nil
}

// Release frees the delay line storage. The next block re-allocates it.
func (e *Engine[F]) Release() {
	e.bank = &delayline.Bank[F]{}
	e.delays = nil
	e.configured = unsetMicrophones
}

func (e *Engine[F]) setSampleRate(sampleRate float64) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive: %f", sampleRate)
	}
	e.geom.SampleRate = sampleRate
	e.capacity = e.fixedCapacity
	if e.capacity == 0 {
		e.capacity = CapacityFor(sampleRate, e.geom.SpeedOfSound)
	}
	return nil
}

// reset clears all delay history and resizes the bank for microphones lines.
func (e *Engine[F]) reset(microphones int) {
	if microphones < 0 {
		microphones = 0
	}
	e.bank.Reset(microphones, e.capacity)
	if cap(e.delays) >= microphones {
		e.delays = e.delays[:microphones]
	} else {
		e.delays = make([]int, microphones)
	}
	e.configured = microphones
	e.stats.resets.Add(1)
}

// Process beamforms one block in place. buf holds one slice per channel;
// only the first cfg.Microphones channels are used. On return buf[0] holds
// the averaged, steered signal and buf[1:] hold intermediate delayed copies.
func (e *Engine[F]) Process(buf [][]F, cfg ArrayConfig) {
	if cfg.Microphones != e.configured {
		e.reset(cfg.Microphones)
	}

	n := min(cfg.Microphones, len(buf))
	if n <= 0 {
		return
	}

	blockLen := len(buf[0])
	for c := 1; c < n; c++ {
		blockLen = min(blockLen, len(buf[c]))
	}

	steering := e.geom.Steer(cfg, e.delays)

	latency := 0
	for c := range n {
		d := e.delays[c]
		if d > e.capacity {
			e.stats.overflows.Add(1)
			if e.overflow == OverflowClamp {
				d = e.capacity
			}
		}
		latency = max(latency, d)
		e.bank.Process(c, buf[c][:blockLen], d)
	}

	sumInto(buf[0][:blockLen], buf[1:n])

	out := buf[0][:blockLen]
	div := F(n)
	for s := range out {
		out[s] /= div
	}

	e.stats.blocks.Add(1)
	e.stats.latency.Store(int64(latency))
	e.stats.maxDelay.Store(int64(steering.MaxDelay))
	e.stats.steering.Store(int32(steering.Case))
}

// sumInto adds every channel in rest into out sample by sample.
func sumInto[F simdops.Float](out []F, rest [][]F) {
	for _, ch := range rest {
		ch = ch[:len(out)]
		for s := range out {
			out[s] += ch[s]
		}
	}
}

// Delays returns the per-channel delays computed for the last block.
// The slice is owned by the engine.
func (e *Engine[F]) Delays() []int {
	return e.delays
}

// Capacity returns the delay line size in samples.
func (e *Engine[F]) Capacity() int {
	return e.capacity
}

// Geometry returns the steering constants in use.
func (e *Engine[F]) Geometry() Geometry {
	return e.geom
}

// Configured returns the microphone count the delay lines are sized for,
// or -1 before the first block.
func (e *Engine[F]) Configured() int {
	return e.configured
}

// Stats returns a copy of the engine counters. Safe to call from any
// goroutine.
func (e *Engine[F]) Stats() Stats {
	return Stats{
		Blocks:    e.stats.blocks.Load(),
		Resets:    e.stats.resets.Load(),
		Overflows: e.stats.overflows.Load(),
		Latency:   int(e.stats.latency.Load()),
		MaxDelay:  int(e.stats.maxDelay.Load()),
		Steering:  SteeringCase(e.stats.steering.Load()),
	}
}

// MemoryUsage returns the approximate delay line footprint in bytes.
func (e *Engine[F]) MemoryUsage() int64 {
	return int64(e.bank.Channels()) * int64(e.bank.Capacity()) * int64(simdops.SizeOf[F]())
}

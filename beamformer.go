package beamformer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tphakala/go-audio-beamformer/internal/engine"
	"github.com/tphakala/go-audio-beamformer/internal/simdops"
)

// Float is the type constraint for supported sample types.
type Float = simdops.Float

// ArrayConfig is one snapshot of the live array parameters.
type ArrayConfig = engine.ArrayConfig

// AngleMode selects how the direction of arrival is fed to the cosine.
type AngleMode = engine.AngleMode

const (
	// AngleLiteral passes the direction in degrees straight to cos, as the
	// reference plugin does.
	AngleLiteral = engine.AngleLiteral

	// AngleDegrees converts the direction to radians first.
	AngleDegrees = engine.AngleDegrees
)

// OverflowPolicy decides what happens to delays longer than the delay lines.
type OverflowPolicy = engine.OverflowPolicy

const (
	// OverflowClamp limits such delays to the delay line capacity.
	OverflowClamp = engine.OverflowClamp

	// OverflowWrap lets the read position wrap around the ring.
	OverflowWrap = engine.OverflowWrap
)

// SteeringCase tags which end of the array is the timing reference.
type SteeringCase = engine.SteeringCase

const (
	SteeringLagging = engine.SteeringLagging
	SteeringLeading = engine.SteeringLeading
)

// Stats is a point-in-time copy of the processing counters.
type Stats = engine.Stats

// Config holds beamformer configuration.
type Config struct {
	// SampleRate of the input audio in Hz.
	SampleRate float64

	// Microphones is the initial microphone count. Zero selects
	// DefaultMicrophones.
	Microphones int

	// Spacing is the initial inter-microphone distance in meters. Zero
	// selects DefaultSpacing.
	Spacing float64

	// Direction is the initial direction of arrival in degrees.
	Direction int

	// SpeedOfSound in m/s. Zero selects DefaultSpeedOfSound.
	SpeedOfSound float64

	// AngleMode selects literal (reference) or degree-correct steering.
	AngleMode AngleMode

	// DelayCapacity fixes the delay line size in samples. Zero derives it
	// from the sample rate so that no in-range configuration overflows.
	DelayCapacity int

	// Overflow selects the behavior for delays longer than DelayCapacity.
	Overflow OverflowPolicy

	// Logger receives lifecycle messages. Nothing is logged from Process.
	// When nil, log output is discarded.
	Logger logrus.FieldLogger
}

// Common errors returned by the beamformer.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid beamformer configuration")

	// ErrNotSupported indicates the requested operation is not supported.
	ErrNotSupported = errors.New("operation not supported")

	// ErrChannelMismatch indicates a buffer with fewer channels than required.
	ErrChannelMismatch = errors.New("channel count mismatch")
)

// ApplyDefaults fills zero fields with their defaults. Direction has no
// default because zero degrees is a valid direction.
func (c *Config) ApplyDefaults() {
	if c.Microphones == 0 {
		c.Microphones = DefaultMicrophones
	}
	if c.Spacing == 0 {
		c.Spacing = DefaultSpacing
	}
	if c.SpeedOfSound == 0 {
		c.SpeedOfSound = DefaultSpeedOfSound
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}

	if c.Microphones < MinMicrophones || c.Microphones > MaxMicrophones {
		return fmt.Errorf("%w: microphones must be %d-%d", ErrInvalidConfig, MinMicrophones, MaxMicrophones)
	}

	// Negated comparison also rejects NaN.
	if !(c.Spacing >= MinSpacing && c.Spacing <= MaxSpacing) {
		return fmt.Errorf("%w: spacing must be %v-%v m", ErrInvalidConfig, MinSpacing, MaxSpacing)
	}

	if c.Direction < MinDirection || c.Direction > MaxDirection {
		return fmt.Errorf("%w: direction must be %d-%d degrees", ErrInvalidConfig, MinDirection, MaxDirection)
	}

	if !(c.SpeedOfSound > 0) {
		return fmt.Errorf("%w: speed of sound must be positive", ErrInvalidConfig)
	}

	if c.DelayCapacity < 0 {
		return fmt.Errorf("%w: delay capacity must not be negative", ErrInvalidConfig)
	}

	switch c.AngleMode {
	case AngleLiteral, AngleDegrees:
	default:
		return fmt.Errorf("%w: unknown angle mode %v", ErrInvalidConfig, c.AngleMode)
	}

	switch c.Overflow {
	case OverflowClamp, OverflowWrap:
	default:
		return fmt.Errorf("%w: unknown overflow policy %v", ErrInvalidConfig, c.Overflow)
	}

	return nil
}

// ArrayConfig returns the initial array parameters of c.
func (c *Config) ArrayConfig() ArrayConfig {
	return ArrayConfig{
		Microphones: c.Microphones,
		Spacing:     c.Spacing,
		Direction:   c.Direction,
	}
}

// engineOptions converts c to engine options.
func (c *Config) engineOptions() engine.Options {
	return engine.Options{
		SpeedOfSound: c.SpeedOfSound,
		AngleMode:    c.AngleMode,
		Capacity:     c.DelayCapacity,
		Overflow:     c.Overflow,
	}
}

// ParseAngleMode parses "literal" or "degrees".
func ParseAngleMode(s string) (AngleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", AngleLiteral.String():
		return AngleLiteral, nil
	case AngleDegrees.String():
		return AngleDegrees, nil
	default:
		return AngleLiteral, fmt.Errorf("%w: unknown angle mode %q", ErrInvalidConfig, s)
	}
}

// ParseOverflowPolicy parses "clamp" or "wrap".
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", OverflowClamp.String():
		return OverflowClamp, nil
	case OverflowWrap.String():
		return OverflowWrap, nil
	default:
		return OverflowClamp, fmt.Errorf("%w: unknown overflow policy %q", ErrInvalidConfig, s)
	}
}

// CapacityFor returns the delay line size that holds the longest delay any
// in-range configuration can request.
func CapacityFor(sampleRate, speedOfSound float64) int {
	return engine.CapacityFor(sampleRate, speedOfSound)
}

// Beamformer is a delay-and-sum beamformer for one microphone array.
//
// Type parameter F must be float32 or float64.
//
// Process is meant to be called from the audio callback. It reads the live
// Parameters once per block and never allocates unless the microphone count
// changed.
type Beamformer[F Float] struct {
	config Config
	params *Parameters
	engine *engine.Engine[F]
	log    logrus.FieldLogger
}

// New creates a beamformer and sizes its delay lines for the initial
// microphone count.
func New[F Float](config *Config) (*Beamformer[F], error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	cfg := *config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = discardLogger()
	}

	e, err := engine.New[F](cfg.SampleRate, cfg.engineOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	b := &Beamformer[F]{
		config: cfg,
		params: NewParameters(),
		engine: e,
		log:    log,
	}
	b.params.Set(cfg.ArrayConfig())

	if err := b.engine.Prepare(cfg.SampleRate, b.params.Microphones()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	b.log.WithFields(logrus.Fields{
		"sample_rate":    cfg.SampleRate,
		"microphones":    cfg.Microphones,
		"spacing":        cfg.Spacing,
		"direction":      cfg.Direction,
		"angle_mode":     cfg.AngleMode.String(),
		"overflow":       cfg.Overflow.String(),
		"delay_capacity": b.engine.Capacity(),
	}).Debug("beamformer created")
	b.checkCapacity()

	return b, nil
}

// Prepare re-initializes the delay lines for a new sample rate. It clears all
// delay history and pre-allocates storage for the current microphone count.
// blockSize is the largest block the host will deliver; zero means unknown.
func (b *Beamformer[F]) Prepare(sampleRate float64, blockSize int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}
	if blockSize < minBlockSize {
		return fmt.Errorf("%w: block size must not be negative", ErrInvalidConfig)
	}

	if err := b.engine.Prepare(sampleRate, b.params.Microphones()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	b.config.SampleRate = sampleRate

	b.log.WithFields(logrus.Fields{
		"sample_rate":    sampleRate,
		"block_size":     blockSize,
		"microphones":    b.params.Microphones(),
		"delay_capacity": b.engine.Capacity(),
	}).Debug("beamformer prepared")
	b.checkCapacity()

	return nil
}

// checkCapacity warns when a fixed capacity cannot hold the worst-case delay.
func (b *Beamformer[F]) checkCapacity() {
	need := CapacityFor(b.config.SampleRate, b.config.SpeedOfSound)
	if b.engine.Capacity() >= need {
		return
	}
	b.log.WithFields(logrus.Fields{
		"delay_capacity": b.engine.Capacity(),
		"required":       need,
		"overflow":       b.config.Overflow.String(),
	}).Warn("delay capacity below worst-case delay")
}

// Release frees the delay line storage. The next Process or Prepare call
// allocates it again.
func (b *Beamformer[F]) Release() {
	b.engine.Release()
	b.log.Debug("beamformer released")
}

// Process beamforms one block in place. buf holds one slice per input
// channel, all of the same length. On return buf[0] holds the beamformed
// signal and buf[1:Microphones] hold the delayed channel copies.
//
// Blocks with fewer channels than the configured microphone count are
// averaged over the channels present.
func (b *Beamformer[F]) Process(buf [][]F) {
	b.engine.Process(buf, b.params.Snapshot())
}

// Params returns the live parameters. They may be changed from any goroutine.
func (b *Beamformer[F]) Params() *Parameters {
	return b.params
}

// Stats returns the processing counters. Safe to call from any goroutine.
func (b *Beamformer[F]) Stats() Stats {
	return b.engine.Stats()
}

// Latency returns the largest per-channel delay applied in the last block.
// The beamformer has no tail: output stops when input stops.
func (b *Beamformer[F]) Latency() int {
	return b.engine.Stats().Latency
}

// Config returns the configuration the beamformer was created with, with
// defaults applied and the sample rate of the last Prepare.
func (b *Beamformer[F]) Config() Config {
	return b.config
}

// Info returns information about the beamformer implementation.
type Info struct {
	// Algorithm describes the beamforming algorithm in use.
	Algorithm string

	// SampleRate is the current sample rate in Hz.
	SampleRate float64

	// Microphones is the count the delay lines are sized for.
	Microphones int

	// DelayCapacity is the size of each delay line in samples.
	DelayCapacity int

	// Latency is the largest delay applied in the last block.
	Latency int

	// MemoryUsage is the approximate delay line memory in bytes.
	MemoryUsage int64

	// AngleMode and Overflow echo the configuration.
	AngleMode AngleMode
	Overflow  OverflowPolicy

	// SIMDEnabled indicates if SIMD kernels are active.
	SIMDEnabled bool

	// SIMDType describes the SIMD instruction set in use.
	SIMDType string
}

// GetInfo returns information about the beamformer. It reads engine state
// that Process writes, so call it from the audio goroutine or while stopped.
func (b *Beamformer[F]) GetInfo() Info {
	info := Info{
		Algorithm:     "delay-and-sum",
		SampleRate:    b.config.SampleRate,
		Microphones:   max(b.engine.Configured(), 0),
		DelayCapacity: b.engine.Capacity(),
		Latency:       b.Latency(),
		MemoryUsage:   b.engine.MemoryUsage(),
		AngleMode:     b.config.AngleMode,
		Overflow:      b.config.Overflow,
		SIMDType:      "none",
	}
	if simd := simdops.CPUInfo(); simd != "" {
		info.SIMDEnabled = true
		info.SIMDType = simd
	}
	return info
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

package beamformer

import (
	"fmt"

	"github.com/tphakala/go-audio-beamformer/internal/engine"
	"github.com/tphakala/go-audio-beamformer/internal/simdops"
)

// LegacyConfig returns a configuration that reproduces the reference plugin
// exactly: default parameters, degrees passed to cos unconverted, 256-sample
// delay lines and wrap-around reads for longer delays.
func LegacyConfig(sampleRate float64) *Config {
	return &Config{
		SampleRate:    sampleRate,
		Microphones:   DefaultMicrophones,
		Spacing:       DefaultSpacing,
		Direction:     DefaultDirection,
		SpeedOfSound:  DefaultSpeedOfSound,
		AngleMode:     AngleLiteral,
		DelayCapacity: LegacyDelayCapacity,
		Overflow:      OverflowWrap,
	}
}

// Steering describes the delays a configuration produces.
type Steering struct {
	// Case tells which end of the array is the timing reference.
	Case SteeringCase

	// MaxDelay is the signed array-wide delay in samples.
	MaxDelay int

	// Delays holds the delay applied to each channel, one per microphone.
	Delays []int
}

// ComputeDelays returns the steering delays for the initial array parameters
// of config without processing any audio.
func ComputeDelays(config *Config) (Steering, error) {
	if config == nil {
		return Steering{}, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	cfg := *config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Steering{}, err
	}

	g := engine.Geometry{
		SampleRate:   cfg.SampleRate,
		SpeedOfSound: cfg.SpeedOfSound,
		AngleMode:    cfg.AngleMode,
	}
	delays := make([]int, cfg.Microphones)
	s := g.Steer(cfg.ArrayConfig(), delays)

	return Steering{Case: s.Case, MaxDelay: s.MaxDelay, Delays: delays}, nil
}

// BeamformPlanar is a convenience function for one-shot offline beamforming.
// input holds one slice per channel, all of equal length, and is not
// modified. It returns the beamformed mono signal.
func BeamformPlanar[F Float](input [][]F, config *Config) ([]F, error) {
	b, err := New[F](config)
	if err != nil {
		return nil, err
	}

	mics := b.Params().Microphones()
	if len(input) < mics {
		return nil, fmt.Errorf("%w: need %d channels, got %d", ErrChannelMismatch, mics, len(input))
	}

	n := len(input[0])
	buf := make([][]F, mics)
	for ch := range buf {
		if len(input[ch]) != n {
			return nil, fmt.Errorf("%w: channel %d has %d samples, want %d", ErrChannelMismatch, ch, len(input[ch]), n)
		}
		buf[ch] = append([]F(nil), input[ch]...)
	}

	b.Process(buf)
	return buf[0], nil
}

// Deinterleave splits interleaved frames into one slice per channel.
// Input format: [c0s0, c1s0, ..., c0s1, c1s1, ...]
func Deinterleave[F Float](interleaved []F, channels int) ([][]F, error) {
	if channels < monoChannels {
		return nil, fmt.Errorf("%w: channels must be at least %d", ErrInvalidConfig, monoChannels)
	}
	if len(interleaved)%channels != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames",
			ErrChannelMismatch, len(interleaved), channels)
	}

	frames := len(interleaved) / channels
	out := make([][]F, channels)
	for ch := range out {
		out[ch] = make([]F, frames)
	}
	DeinterleaveInto(out, interleaved)
	return out, nil
}

// DeinterleaveInto splits interleaved frames into dst without allocating.
// The channel count is len(dst); frames beyond the shortest dst slice are
// ignored.
func DeinterleaveInto[F Float](dst [][]F, interleaved []F) {
	channels := len(dst)
	if channels == 0 {
		return
	}
	frames := len(interleaved) / channels
	for _, ch := range dst {
		frames = min(frames, len(ch))
	}
	for i := range frames {
		frame := interleaved[i*channels : (i+1)*channels]
		for ch, v := range frame {
			dst[ch][i] = v
		}
	}
}

// InterleaveMono copies a mono signal into every channel of an interleaved
// output, as needed to send the beamformed signal to a multichannel device.
func InterleaveMono[F Float](mono []F, channels int) []F {
	if channels < monoChannels {
		return nil
	}
	out := make([]F, len(mono)*channels)
	InterleaveMonoInto(out, mono, channels)
	return out
}

// InterleaveMonoInto is InterleaveMono writing into dst, which must hold
// len(mono)*channels samples.
func InterleaveMonoInto[F Float](dst, mono []F, channels int) {
	switch channels {
	case monoChannels:
		copy(dst, mono)
	case stereoChannels:
		simdops.For[F]().Interleave2(dst, mono, mono)
	default:
		for i, v := range mono {
			frame := dst[i*channels : (i+1)*channels]
			for ch := range frame {
				frame[ch] = v
			}
		}
	}
}

// Package beamformer provides a real-time delay-and-sum microphone array
// beamformer in pure Go.
//
// A linear array of N microphones with equal spacing d picks up a plane wave
// arriving from direction theta. Each microphone hears the wave at a slightly
// different time. The beamformer delays every channel by an integer number of
// samples so the wavefront lines up across the array, then averages the
// aligned channels into channel 0. Sound from the look direction adds
// coherently; sound from elsewhere partially cancels.
//
// # Features
//
//   - Integer-sample steering for 2 to 64 microphones, 0.01 to 0.5 m spacing
//   - Per-channel circular delay lines that carry history across blocks
//   - Lock-free parameter updates from a control goroutine
//   - No allocation on the audio path once the array size is settled
//   - float32 and float64 processing through a single generic type
//   - Optional reproduction of the reference plugin's steering and sizing
//
// # Quick Start
//
//	bf, err := beamformer.New[float32](&beamformer.Config{
//	    SampleRate:  48000,
//	    Microphones: 4,
//	    Spacing:     0.05,
//	    Direction:   30,
//	    AngleMode:   beamformer.AngleDegrees,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// In the audio callback: buf holds one slice per input channel.
//	bf.Process(buf)
//	// buf[0] now holds the beamformed signal.
//
//	// From any goroutine:
//	bf.Params().SetDirection(120)
//
// # Steering
//
// The array-wide delay is
//
//	maxDelay = round(N * fs * d * cos(theta) / c)
//
// When maxDelay is positive the wave reaches microphone 0 first
// ([SteeringLagging]) and channel k+1 is delayed by round((k+1) * tau).
// Otherwise the last microphone is the reference ([SteeringLeading]) and
// channel k is delayed by |maxDelay - round((k+1) * tau)|.
//
// The reference plugin passes the direction in degrees straight to cos. That
// behavior is the default, [AngleLiteral], so existing presets keep sounding
// the same. Use [AngleDegrees] for geometrically correct steering.
//
// # Delay Line Sizing
//
// By default every delay line holds [CapacityFor] samples, enough for the
// longest delay any in-range configuration can request. [LegacyConfig]
// selects the reference plugin's fixed 256-sample lines with wrap-around
// reads, which produce audible artifacts for long arrays.
//
// # Thread Safety
//
// [Beamformer.Process], [Beamformer.Prepare] and [Beamformer.Release] must be
// called from one goroutine at a time, normally the audio thread.
// [Parameters] setters and [Beamformer.Stats] are safe from any goroutine.
package beamformer

package engine

import (
	"fmt"
	"math"
)

// AngleMode selects how the direction of arrival is fed to the cosine.
type AngleMode int

const (
	// AngleLiteral passes the direction in degrees straight to math.Cos,
	// which expects radians. This reproduces the reference array model,
	// including its steering error for every angle other than 0.
	AngleLiteral AngleMode = iota

	// AngleDegrees converts the direction from degrees to radians first.
	AngleDegrees
)

// String returns the mode name used in profiles and on the command line.
func (m AngleMode) String() string {
	switch m {
	case AngleLiteral:
		return "literal"
	case AngleDegrees:
		return "degrees"
	default:
		return fmt.Sprintf("AngleMode(%d)", int(m))
	}
}

// ArrayConfig is one snapshot of the live array parameters.
type ArrayConfig struct {
	Microphones int     // number of microphones in the line array
	Spacing     float64 // distance between adjacent microphones in meters
	Direction   int     // direction of arrival in degrees
}

// SteeringCase tags which end of the array is the timing reference.
type SteeringCase int

const (
	// SteeringLagging applies when the array-wide delay is positive: channel
	// 0 is the reference and channel k+1 is delayed by round((k+1)*tau).
	SteeringLagging SteeringCase = iota

	// SteeringLeading applies when the array-wide delay is zero or negative:
	// channel k is delayed by |maxDelay - round((k+1)*tau)|, which makes the
	// last channel the reference.
	SteeringLeading
)

// String returns a short name for the case.
func (s SteeringCase) String() string {
	switch s {
	case SteeringLagging:
		return "lagging"
	case SteeringLeading:
		return "leading"
	default:
		return fmt.Sprintf("SteeringCase(%d)", int(s))
	}
}

// Steering is the outcome of one delay computation.
type Steering struct {
	Case     SteeringCase
	MaxDelay int // round(N * fs * d * cos(theta) / c), may be negative
}

// Geometry holds the constants that turn an ArrayConfig into sample delays.
type Geometry struct {
	SampleRate   float64
	SpeedOfSound float64
	AngleMode    AngleMode
}

// cosine returns cos(direction) interpreted according to the angle mode.
func (g Geometry) cosine(direction int) float64 {
	if g.AngleMode == AngleDegrees {
		return math.Cos(float64(direction) * degreesToRadians)
	}
	return math.Cos(float64(direction))
}

// RawDelay returns round(n * fs * spacing * cos(direction) / c): the signed
// arrival offset in samples of microphone n relative to microphone 0.
func (g Geometry) RawDelay(n int, cfg ArrayConfig) int {
	if g.SpeedOfSound <= 0 {
		return 0
	}
	return int(math.Round(float64(n) * g.SampleRate * cfg.Spacing * g.cosine(cfg.Direction) / g.SpeedOfSound))
}

// Steer fills delays[c] with the delay applied to channel c and reports which
// steering case was selected. Channels at or beyond len(delays) are ignored,
// entries that receive no delay are set to zero. Steer does not allocate.
func (g Geometry) Steer(cfg ArrayConfig, delays []int) Steering {
	n := min(cfg.Microphones, len(delays))
	if n <= 0 {
		return Steering{Case: SteeringLeading}
	}
	clear(delays[:n])

	maxDelay := g.RawDelay(cfg.Microphones, cfg)
	s := Steering{Case: SteeringLeading, MaxDelay: maxDelay}
	if maxDelay > 0 {
		s.Case = SteeringLagging
	}

	for k := 0; k < cfg.Microphones-1; k++ {
		d := g.RawDelay(k+1, cfg)
		switch s.Case {
		case SteeringLagging:
			if k+1 < n {
				delays[k+1] = d
			}
		case SteeringLeading:
			if k < n {
				delays[k] = abs(maxDelay - d)
			}
		}
	}

	return s
}

// MaxAbsDelay returns the largest delay any valid array can request at the
// given sample rate and speed of sound.
func MaxAbsDelay(sampleRate, speedOfSound float64) float64 {
	if speedOfSound <= 0 {
		return 0
	}
	return MaxMicrophones * sampleRate * MaxSpacing / speedOfSound
}

// CapacityFor returns a ring size that holds the worst-case delay of any
// in-range configuration.
func CapacityFor(sampleRate, speedOfSound float64) int {
	return int(math.Ceil(MaxAbsDelay(sampleRate, speedOfSound))) + capacityHeadroom
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

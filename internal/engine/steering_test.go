package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referenceDelay evaluates round(n * fs * d * cos(theta) / c) the way the
// reference array model does, with theta in whatever unit mode selects.
func referenceDelay(n int, fs, spacing float64, direction int, c float64, mode AngleMode) int {
	theta := float64(direction)
	if mode == AngleDegrees {
		theta = theta * math.Pi / 180
	}
	return int(math.Round(float64(n) * fs * spacing * math.Cos(theta) / c))
}

func TestGeometry_RawDelayMatchesFormula(t *testing.T) {
	testCases := []struct {
		name string
		cfg  ArrayConfig
		fs   float64
		mode AngleMode
	}{
		{"4mics_5cm_90deg_literal", ArrayConfig{4, 0.05, 90}, 48000, AngleLiteral},
		{"2mics_5cm_0deg_literal", ArrayConfig{2, 0.05, 0}, 48000, AngleLiteral},
		{"8mics_10cm_45deg_degrees", ArrayConfig{8, 0.1, 45}, 44100, AngleDegrees},
		{"16mics_20cm_180deg_degrees", ArrayConfig{16, 0.2, 180}, 96000, AngleDegrees},
		{"64mics_50cm_360deg_literal", ArrayConfig{64, 0.5, 360}, 48000, AngleLiteral},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := Geometry{SampleRate: tc.fs, SpeedOfSound: DefaultSpeedOfSound, AngleMode: tc.mode}
			for k := 0; k < tc.cfg.Microphones; k++ {
				want := referenceDelay(k+1, tc.fs, tc.cfg.Spacing, tc.cfg.Direction, DefaultSpeedOfSound, tc.mode)
				assert.Equal(t, want, g.RawDelay(k+1, tc.cfg), "k=%d", k)
			}
		})
	}
}

// TestGeometry_SteerLiteral90Degrees pins the four-microphone case with the
// angle passed to cos as raw degrees: cos(90 rad) is negative, so the
// leading case applies and the last channel is the reference.
func TestGeometry_SteerLiteral90Degrees(t *testing.T) {
	g := Geometry{SampleRate: 48000, SpeedOfSound: 345, AngleMode: AngleLiteral}
	cfg := ArrayConfig{Microphones: 4, Spacing: 0.05, Direction: 90}

	delays := make([]int, 4)
	s := g.Steer(cfg, delays)

	assert.Equal(t, SteeringLeading, s.Case)
	assert.Equal(t, -12, s.MaxDelay)
	assert.Equal(t, []int{-3, -6, -9}, []int{
		g.RawDelay(1, cfg), g.RawDelay(2, cfg), g.RawDelay(3, cfg),
	})
	assert.Equal(t, []int{9, 6, 3, 0}, delays)
}

// TestGeometry_SteerDegrees90IsBroadside checks the corrected mode: a source
// at 90 degrees reaches every microphone at once.
func TestGeometry_SteerDegrees90IsBroadside(t *testing.T) {
	g := Geometry{SampleRate: 48000, SpeedOfSound: 345, AngleMode: AngleDegrees}
	delays := make([]int, 4)
	s := g.Steer(ArrayConfig{Microphones: 4, Spacing: 0.05, Direction: 90}, delays)

	assert.Equal(t, SteeringLeading, s.Case)
	assert.Zero(t, s.MaxDelay)
	assert.Equal(t, []int{0, 0, 0, 0}, delays)
}

func TestGeometry_SteerLaggingEndfire(t *testing.T) {
	g := Geometry{SampleRate: 48000, SpeedOfSound: 345}
	delays := make([]int, 2)
	s := g.Steer(ArrayConfig{Microphones: 2, Spacing: 0.05, Direction: 0}, delays)

	assert.Equal(t, SteeringLagging, s.Case)
	assert.Equal(t, 14, s.MaxDelay)
	assert.Equal(t, []int{0, 7}, delays)
}

func TestGeometry_SteerLaggingUsesNextChannel(t *testing.T) {
	g := Geometry{SampleRate: 48000, SpeedOfSound: 345, AngleMode: AngleDegrees}
	cfg := ArrayConfig{Microphones: 5, Spacing: 0.04, Direction: 30}

	delays := make([]int, 5)
	s := g.Steer(cfg, delays)
	require.Equal(t, SteeringLagging, s.Case)

	assert.Zero(t, delays[0], "channel 0 is the reference")
	for k := 0; k < cfg.Microphones-1; k++ {
		assert.Equal(t, g.RawDelay(k+1, cfg), delays[k+1], "channel %d", k+1)
	}
}

func TestGeometry_SteerLeadingUsesSameChannel(t *testing.T) {
	g := Geometry{SampleRate: 48000, SpeedOfSound: 345, AngleMode: AngleDegrees}
	cfg := ArrayConfig{Microphones: 5, Spacing: 0.04, Direction: 150}

	delays := make([]int, 5)
	s := g.Steer(cfg, delays)
	require.Equal(t, SteeringLeading, s.Case)
	require.Negative(t, s.MaxDelay)

	for k := 0; k < cfg.Microphones-1; k++ {
		want := s.MaxDelay - g.RawDelay(k+1, cfg)
		if want < 0 {
			want = -want
		}
		assert.Equal(t, want, delays[k], "channel %d", k)
	}
	assert.Zero(t, delays[cfg.Microphones-1], "last channel is the reference")
}

// TestGeometry_SteerMirrorsAcrossBroadside checks that mirrored angles give
// mirrored delay profiles: the same magnitudes reached from opposite ends.
func TestGeometry_SteerMirrorsAcrossBroadside(t *testing.T) {
	g := Geometry{SampleRate: 48000, SpeedOfSound: 345, AngleMode: AngleDegrees}
	const n = 6

	front := make([]int, n)
	back := make([]int, n)
	g.Steer(ArrayConfig{Microphones: n, Spacing: 0.05, Direction: 0}, front)
	g.Steer(ArrayConfig{Microphones: n, Spacing: 0.05, Direction: 180}, back)

	assert.Zero(t, front[0])
	assert.Zero(t, back[n-1])
	assert.Equal(t, front[n-1], back[0])
}

func TestGeometry_SteerIgnoresExtraSlots(t *testing.T) {
	g := Geometry{SampleRate: 48000, SpeedOfSound: 345}
	delays := []int{-1, -1, -1, 99, 99}
	g.Steer(ArrayConfig{Microphones: 3, Spacing: 0.05, Direction: 0}, delays)

	assert.Equal(t, []int{99, 99}, delays[3:], "slots beyond the array are untouched")
	assert.Zero(t, delays[0])
}

func TestGeometry_SteerShortDelaySlice(t *testing.T) {
	g := Geometry{SampleRate: 48000, SpeedOfSound: 345}
	delays := make([]int, 2)
	assert.NotPanics(t, func() {
		g.Steer(ArrayConfig{Microphones: 8, Spacing: 0.05, Direction: 0}, delays)
	})
	assert.Equal(t, 7, delays[1])
}

func TestGeometry_SteerDegenerateCounts(t *testing.T) {
	g := Geometry{SampleRate: 48000, SpeedOfSound: 345}

	for _, mics := range []int{-3, 0} {
		assert.NotPanics(t, func() {
			g.Steer(ArrayConfig{Microphones: mics, Spacing: 0.05}, make([]int, 4))
		})
	}

	delays := []int{5}
	g.Steer(ArrayConfig{Microphones: 1, Spacing: 0.05}, delays)
	assert.Equal(t, []int{0}, delays, "a single microphone is never delayed")
}

func TestGeometry_SteerDoesNotAllocate(t *testing.T) {
	g := Geometry{SampleRate: 48000, SpeedOfSound: 345}
	delays := make([]int, MaxMicrophones)
	cfg := ArrayConfig{Microphones: MaxMicrophones, Spacing: 0.3, Direction: 77}

	allocs := testing.AllocsPerRun(20, func() {
		g.Steer(cfg, delays)
	})
	assert.Zero(t, allocs)
}

func TestCapacityFor_CoversWorstCase(t *testing.T) {
	for _, fs := range []float64{8000, 44100, 48000, 96000, 192000} {
		capacity := CapacityFor(fs, DefaultSpeedOfSound)

		for _, mode := range []AngleMode{AngleLiteral, AngleDegrees} {
			g := Geometry{SampleRate: fs, SpeedOfSound: DefaultSpeedOfSound, AngleMode: mode}
			delays := make([]int, MaxMicrophones)
			for dir := MinDirection; dir <= MaxDirection; dir++ {
				s := g.Steer(ArrayConfig{MaxMicrophones, MaxSpacing, dir}, delays)
				assert.LessOrEqual(t, abs(s.MaxDelay), capacity, "fs=%v dir=%d", fs, dir)
				for c, d := range delays {
					if d > capacity {
						t.Fatalf("fs=%v dir=%d channel %d delay %d exceeds capacity %d", fs, dir, c, d, capacity)
					}
				}
			}
		}
	}
}

func TestCapacityFor_LegacyTooSmall(t *testing.T) {
	assert.Greater(t, CapacityFor(48000, DefaultSpeedOfSound), LegacyCapacity)
}

func TestAngleMode_String(t *testing.T) {
	assert.Equal(t, "literal", AngleLiteral.String())
	assert.Equal(t, "degrees", AngleDegrees.String())
	assert.Equal(t, "AngleMode(7)", AngleMode(7).String())
	assert.Equal(t, "lagging", SteeringLagging.String())
	assert.Equal(t, "leading", SteeringLeading.String())
}

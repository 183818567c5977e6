// Package testutil provides reusable test helpers for beamformer tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/go-audio-beamformer/internal/simdops"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	Float32Tolerance = 1e-6
	DBTolerance      = 0.01
)

// NewBuffer allocates a planar buffer of channels x samples zeros.
func NewBuffer[F simdops.Float](channels, samples int) [][]F {
	buf := make([][]F, channels)
	for ch := range buf {
		buf[ch] = make([]F, samples)
	}
	return buf
}

// ConstantBuffer returns a planar buffer where every sample equals v.
func ConstantBuffer[F simdops.Float](channels, samples int, v F) [][]F {
	buf := NewBuffer[F](channels, samples)
	for _, ch := range buf {
		for i := range ch {
			ch[i] = v
		}
	}
	return buf
}

// Sine returns n samples of a sine wave at freq Hz.
func Sine(n int, freq, sampleRate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return out
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf[F simdops.Float](t *testing.T, s []F, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllEqual verifies that every element of s equals want within tolerance.
func AssertAllEqual[F simdops.Float](t *testing.T, s []F, want F, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if !assert.InDelta(t, float64(want), float64(v), tolerance,
			"s[%d]=%v, want %v", i, v, want) {
			return false
		}
	}
	return true
}

// AssertImpulseAt verifies that s is zero everywhere except at index pos,
// where it equals amplitude.
func AssertImpulseAt[F simdops.Float](t *testing.T, s []F, pos int, amplitude, tolerance float64) bool {
	t.Helper()
	for i, v := range s {
		want := 0.0
		if i == pos {
			want = amplitude
		}
		if !assert.InDelta(t, want, float64(v), tolerance,
			"s[%d]=%v, want %v", i, v, want) {
			return false
		}
	}
	return true
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

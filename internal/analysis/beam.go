// Package analysis measures the spatial and spectral response of a steered
// microphone array by feeding simulated plane waves through the engine.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tphakala/go-audio-beamformer/internal/engine"
	"github.com/tphakala/go-audio-beamformer/internal/simdops"
	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrInvalidOptions indicates unusable analysis options.
var ErrInvalidOptions = errors.New("invalid analysis options")

// Options describes the array under test.
type Options struct {
	SampleRate   float64
	SpeedOfSound float64 // zero selects engine.DefaultSpeedOfSound
	AngleMode    engine.AngleMode

	// Array holds the microphone count, spacing and steering direction.
	Array engine.ArrayConfig

	// FFTSize is the analysis window length. Zero selects 1024.
	FFTSize int
}

func (o *Options) normalize() error {
	if o.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidOptions)
	}
	if o.SpeedOfSound == 0 {
		o.SpeedOfSound = engine.DefaultSpeedOfSound
	}
	if o.SpeedOfSound < 0 {
		return fmt.Errorf("%w: speed of sound must be positive", ErrInvalidOptions)
	}
	if o.Array.Microphones < 1 {
		return fmt.Errorf("%w: need at least one microphone", ErrInvalidOptions)
	}
	if o.Array.Spacing <= 0 {
		return fmt.Errorf("%w: spacing must be positive", ErrInvalidOptions)
	}
	if o.FFTSize == 0 {
		o.FFTSize = defaultFFTSize
	}
	if o.FFTSize <= minWindowsPerDelay*o.warmUp() {
		return fmt.Errorf("%w: fft size %d too small for %d-sample array delay",
			ErrInvalidOptions, o.FFTSize, o.warmUp())
	}
	return nil
}

// warmUp is the longest delay this array can apply, in samples.
func (o *Options) warmUp() int {
	return int(math.Ceil(float64(o.Array.Microphones)*o.SampleRate*o.Array.Spacing/o.SpeedOfSound)) + 1
}

// arrivalStep returns the arrival lead of microphone k+1 over microphone k in
// samples, for a plane wave from direction degrees.
func (o *Options) arrivalStep(degrees int) float64 {
	return o.SampleRate * o.Array.Spacing * math.Cos(float64(degrees)*degreesToRadians) / o.SpeedOfSound
}

func (o *Options) newEngine() (*engine.Engine[float64], [][]float64, error) {
	e, err := engine.New[float64](o.SampleRate, engine.Options{
		SpeedOfSound: o.SpeedOfSound,
		AngleMode:    o.AngleMode,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	buf := make([][]float64, o.Array.Microphones)
	return e, buf, nil
}

// Point is one direction of a beam pattern.
type Point struct {
	Angle  int     // arrival direction in degrees
	GainDB float64 // output power relative to a single microphone
}

// Angles returns arrival directions from 0 to 360 degrees inclusive.
// A step of zero or less selects 5 degrees.
func Angles(step int) []int {
	if step <= 0 {
		step = defaultAngleStep
	}
	out := make([]int, 0, fullCircle/step+1)
	for a := 0; a <= fullCircle; a += step {
		out = append(out, a)
	}
	return out
}

// Pattern measures the array response to a sine of freq Hz arriving from
// each of angles. Arrival directions are true geometric angles in degrees,
// independent of the steering angle mode.
func Pattern(opts Options, freq float64, angles []int) ([]Point, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	if freq <= 0 || freq >= opts.SampleRate/2 {
		return nil, fmt.Errorf("%w: frequency %v outside (0, %v)", ErrInvalidOptions, freq, opts.SampleRate/2)
	}

	e, buf, err := opts.newEngine()
	if err != nil {
		return nil, err
	}
	warm := opts.warmUp()
	n := warm + opts.FFTSize
	for k := range buf {
		buf[k] = make([]float64, n)
	}

	ops := simdops.For[float64]()
	omega := 2 * math.Pi * freq / opts.SampleRate
	points := make([]Point, 0, len(angles))

	for _, angle := range angles {
		step := opts.arrivalStep(angle)
		for k, ch := range buf {
			lead := float64(k) * step
			for t := range ch {
				ch[t] = math.Sin(omega * (float64(t) + lead))
			}
		}
		ref := ops.Energy(buf[0][warm:])

		if err := e.Prepare(opts.SampleRate, opts.Array.Microphones); err != nil {
			return nil, err
		}
		e.Process(buf, opts.Array)

		points = append(points, Point{
			Angle:  angle,
			GainDB: toDB(ops.Energy(buf[0][warm:])/ref, powerDB),
		})
	}

	return points, nil
}

// Bin is one frequency of a magnitude response.
type Bin struct {
	Frequency   float64 // Hz
	MagnitudeDB float64
}

// Spectrum returns the magnitude response of the steered array to a
// broadband impulse arriving from direction arrival. Arrival offsets are
// rounded to whole samples.
func Spectrum(opts Options, arrival int) ([]Bin, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	e, buf, err := opts.newEngine()
	if err != nil {
		return nil, err
	}
	n := opts.FFTSize
	origin := opts.warmUp()
	step := opts.arrivalStep(arrival)
	for k := range buf {
		buf[k] = make([]float64, n)
		buf[k][origin-int(math.Round(float64(k)*step))] = 1
	}

	e.Process(buf, opts.Array)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, buf[0])

	bins := make([]Bin, n/hermitianDivisor+1)
	for i := range bins {
		bins[i] = Bin{
			Frequency:   float64(i) * opts.SampleRate / float64(n),
			MagnitudeDB: toDB(cmplx.Abs(coeffs[i]), amplitudeDB),
		}
	}
	return bins, nil
}

// Peak returns the point with the largest gain. The first of equal maxima
// wins; an empty pattern returns the zero Point.
func Peak(points []Point) Point {
	var best Point
	for i, p := range points {
		if i == 0 || p.GainDB > best.GainDB {
			best = p
		}
	}
	return best
}

// toDB converts a ratio to decibels, floored at minGainDB.
func toDB(ratio, scale float64) float64 {
	if ratio <= 0 || math.IsNaN(ratio) {
		return minGainDB
	}
	return max(scale*math.Log10(ratio), minGainDB)
}

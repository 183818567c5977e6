// Command beamform prints the steering a configuration produces and runs a
// test signal through it.
//
// Usage:
//
//	beamform -mics 4 -spacing 0.04 -direction 60
//	beamform -legacy -rate 96000
//	beamform -profile desk.yaml -dump-profile -
//	beamform -demo
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	beamformer "github.com/tphakala/go-audio-beamformer"
	"github.com/tphakala/go-audio-beamformer/internal/profile"
	"github.com/tphakala/go-audio-beamformer/internal/simdops"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	arrayFlags := profile.RegisterFlags(flag.CommandLine)
	sampleRate := flag.Float64("rate", defaultSampleRate, "Sample rate in Hz")
	dump := flag.String("dump-profile", "", "Write the resolved configuration as a YAML profile (- for stdout)")
	name := flag.String("name", defaultName, "Profile name for -dump-profile")
	demo := flag.Bool("demo", false, "Run a demonstration")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	logger := newLogger(*verbose)

	if *demo {
		return runDemo(*sampleRate)
	}

	prof, err := arrayFlags.Profile()
	if err != nil {
		return err
	}
	cfg, err := prof.Config(*sampleRate)
	if err != nil {
		return err
	}
	cfg.Logger = logger

	if *dump != "" {
		return dumpProfile(*name, cfg, *dump)
	}

	b, err := beamformer.New[float64](cfg)
	if err != nil {
		return fmt.Errorf("failed to create beamformer: %w", err)
	}

	steering, err := beamformer.ComputeDelays(cfg)
	if err != nil {
		return err
	}

	info := b.GetInfo()
	fmt.Printf("Beamformer created:\n")
	fmt.Printf("  Algorithm: %s\n", info.Algorithm)
	fmt.Printf("  Array: %d microphones, %.3f m spacing, steered to %d degrees (%s)\n",
		cfg.Microphones, cfg.Spacing, cfg.Direction, info.AngleMode)
	fmt.Printf("  Sample rate: %g Hz, speed of sound %g m/s\n", info.SampleRate, cfg.SpeedOfSound)
	fmt.Printf("  Delay lines: %d samples (%d needed), overflow %s\n",
		info.DelayCapacity, beamformer.CapacityFor(cfg.SampleRate, cfg.SpeedOfSound), info.Overflow)
	fmt.Printf("  Memory usage: %.2f KB\n", float64(info.MemoryUsage)/bytesPerKilobyte)
	fmt.Printf("  SIMD: %v (%s)\n", info.SIMDEnabled, info.SIMDType)
	fmt.Printf("  Steering: %s, max delay %d samples\n", steering.Case, steering.MaxDelay)
	fmt.Printf("  Delays: %s\n", formatDelays(steering.Delays))

	fmt.Println("\nProcessing test signal...")
	buf := generateTestSignal(cfg.Microphones, testSignalSamples, cfg.SampleRate)
	b.Process(buf)

	st := b.Stats()
	fmt.Printf("Input: %d channels x %d samples\n", cfg.Microphones, testSignalSamples)
	fmt.Printf("Output RMS: %.4f (single microphone %.4f)\n", rms(buf[0]), testSignalAmplitude/math.Sqrt2)
	fmt.Printf("Latency: %d samples, overflowing delays: %d\n", st.Latency, st.Overflows)

	return nil
}

// dumpProfile writes cfg as a YAML profile to path, or stdout for "-".
func dumpProfile(name string, cfg *beamformer.Config, path string) error {
	p := profile.FromConfig(name, cfg)
	if path != stdoutPath {
		return p.Save(path)
	}
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

// generateTestSignal returns a 1 kHz sine on every channel, as from a source
// at broadside.
func generateTestSignal(channels, samples int, sampleRate float64) [][]float64 {
	omega := 2 * math.Pi * testSignalFrequency / sampleRate
	buf := make([][]float64, channels)
	for ch := range buf {
		buf[ch] = make([]float64, samples)
		for i := range buf[ch] {
			buf[ch][i] = testSignalAmplitude * math.Sin(omega*float64(i))
		}
	}
	return buf
}

func rms(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return math.Sqrt(simdops.For[float64]().Energy(s) / float64(len(s)))
}

func formatDelays(delays []int) string {
	parts := make([]string, len(delays))
	for i, d := range delays {
		parts[i] = fmt.Sprint(d)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func runDemo(sampleRate float64) error {
	fmt.Println("=== Delay-and-Sum Beamformer Demo ===")

	// Demo 1: literal versus degree-correct steering
	fmt.Println("\n1. Steering Delays by Angle Mode")
	fmt.Println("--------------------------------")
	fmt.Printf("%d microphones, %.2f m spacing, %g Hz\n\n", demoMicrophones, demoSpacing, sampleRate)
	fmt.Printf("%-10s %-24s %-24s\n", "Direction", "literal", "degrees")

	for dir := 0; dir <= demoMaxAngle; dir += demoAngleStep {
		row := make([]string, 0, 2)
		for _, mode := range []beamformer.AngleMode{beamformer.AngleLiteral, beamformer.AngleDegrees} {
			s, err := beamformer.ComputeDelays(&beamformer.Config{
				SampleRate:  sampleRate,
				Microphones: demoMicrophones,
				Spacing:     demoSpacing,
				Direction:   dir,
				AngleMode:   mode,
			})
			if err != nil {
				return err
			}
			row = append(row, formatDelays(s.Delays))
		}
		fmt.Printf("%-10d %-24s %-24s\n", dir, row[0], row[1])
	}

	// Demo 2: delay line sizing
	fmt.Println("\n2. Delay Line Capacity")
	fmt.Println("----------------------")
	fmt.Printf("%-10s %-10s %-10s\n", "Rate", "Needed", "Legacy")
	for _, rate := range []float64{beamformer.RateCD, beamformer.RateDAT, beamformer.RateHiRes96, beamformer.RateHiRes192} {
		fmt.Printf("%-10g %-10d %-10d\n",
			rate, beamformer.CapacityFor(rate, beamformer.DefaultSpeedOfSound), beamformer.LegacyDelayCapacity)
	}

	// Demo 3: a broadside tone passes at unity gain
	fmt.Println("\n3. Broadside Test Tone")
	fmt.Println("----------------------")
	for _, mics := range []int{beamformer.MinMicrophones, demoMicrophones, beamformer.MaxMicrophones} {
		cfg := &beamformer.Config{
			SampleRate:  sampleRate,
			Microphones: mics,
			Spacing:     demoSpacing,
			Direction:   beamformer.DefaultDirection,
			AngleMode:   beamformer.AngleDegrees,
		}
		b, err := beamformer.New[float64](cfg)
		if err != nil {
			return err
		}
		buf := generateTestSignal(mics, testSignalSamples, sampleRate)
		b.Process(buf)
		fmt.Printf("  %2d microphones: output RMS %.4f\n", mics, rms(buf[0]))
	}

	return nil
}

// newLogger returns a text logger on stderr.
func newLogger(verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

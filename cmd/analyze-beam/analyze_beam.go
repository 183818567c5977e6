// Command analyze-beam prints the beam pattern and frequency response of a
// steered array, measured by simulating plane waves through the beamformer.
//
// Usage:
//
//	analyze-beam -mics 8 -direction 60 -angle-mode degrees -freq 2000
//	analyze-beam -profile desk.yaml -spectrum 120
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/tphakala/go-audio-beamformer/internal/analysis"
	"github.com/tphakala/go-audio-beamformer/internal/profile"
)

const (
	defaultSampleRate = 48000.0
	defaultFrequency  = 1000.0 // Hz
	defaultAngleStep  = 10     // degrees

	// Display scaling
	barFloorDB  = -40.0 // gains at or below this draw an empty bar
	barWidth    = 40
	noSpectrum  = -1
	binsToPrint = 32
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	arrayFlags := profile.RegisterFlags(flag.CommandLine)
	sampleRate := flag.Float64("rate", defaultSampleRate, "Sample rate in Hz")
	freq := flag.Float64("freq", defaultFrequency, "Test tone frequency in Hz for the beam pattern")
	step := flag.Int("step", defaultAngleStep, "Arrival angle step in degrees")
	spectrum := flag.Int("spectrum", noSpectrum, "Also print the frequency response for this arrival angle")
	fftSize := flag.Int("fft", 0, "Analysis window in samples (0 for the default)")
	flag.Parse()

	prof, err := arrayFlags.Profile()
	if err != nil {
		return err
	}
	cfg, err := prof.Config(*sampleRate)
	if err != nil {
		return err
	}

	opts := analysis.Options{
		SampleRate:   cfg.SampleRate,
		SpeedOfSound: cfg.SpeedOfSound,
		AngleMode:    cfg.AngleMode,
		Array:        cfg.ArrayConfig(),
		FFTSize:      *fftSize,
	}

	fmt.Println("=== Analyzing Beam Pattern ===")
	fmt.Printf("%d microphones, %.3f m spacing, steered to %d degrees (%s), %g Hz tone\n\n",
		cfg.Microphones, cfg.Spacing, cfg.Direction, cfg.AngleMode, *freq)

	points, err := analysis.Pattern(opts, *freq, analysis.Angles(*step))
	if err != nil {
		return err
	}
	for _, p := range points {
		fmt.Printf("  %3d deg %8.2f dB %s\n", p.Angle, p.GainDB, bar(p.GainDB))
	}
	peak := analysis.Peak(points)
	fmt.Printf("\nPeak: %d degrees (%.2f dB)\n", peak.Angle, peak.GainDB)

	if *spectrum == noSpectrum {
		return nil
	}

	fmt.Printf("\n=== Frequency Response, arrival from %d degrees ===\n", *spectrum)
	bins, err := analysis.Spectrum(opts, *spectrum)
	if err != nil {
		return err
	}
	stride := max(len(bins)/binsToPrint, 1)
	for i := 0; i < len(bins); i += stride {
		b := bins[i]
		fmt.Printf("  %8.0f Hz %8.2f dB %s\n", b.Frequency, b.MagnitudeDB, bar(b.MagnitudeDB))
	}

	return nil
}

// bar draws gainDB as a bar scaled between barFloorDB and 0 dB.
func bar(gainDB float64) string {
	frac := 1 - min(max(gainDB/barFloorDB, 0), 1)
	return strings.Repeat("#", int(frac*barWidth+0.5))
}

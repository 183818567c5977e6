// Command beamform-file runs a multichannel recording through the
// delay-and-sum beamformer and writes the steered mono signal to a WAV file.
//
// Usage:
//
//	beamform-file -mics 4 -direction 30 input.wav output.wav
//	beamform-file -profile desk.yaml input.ogg output.wav
//	beamform-file -legacy -fast input.wav output.wav       # float32 precision
//	beamform-file -multichannel input.wav aligned.wav      # keep the delayed channels
//	beamform-file -play input.mp3 output.wav               # listen to the result
//
// Input may be WAV, Ogg Vorbis or MP3. Channel i of the input is microphone i
// of the array.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tphakala/go-audio-beamformer/internal/profile"
)

const (
	// Frames per processing block.
	defaultBlockFrames = 4096

	// Output bit depth.
	defaultBitDepth = 24

	// Channel count constants for fast paths
	monoChannels   = 1
	stereoChannels = 2

	// CLI defaults
	minRequiredArgs = 2

	// Log progress every this many seconds of audio.
	progressIntervalSeconds = 10

	// Decibels per decade of amplitude.
	amplitudeDB = 20
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	arrayFlags := profile.RegisterFlags(flag.CommandLine)
	fast := flag.Bool("fast", false, "Use float32 precision")
	bitDepth := flag.Int("bits", defaultBitDepth, "Output bit depth: 16, 24, 32")
	blockFrames := flag.Int("block", defaultBlockFrames, "Frames per processing block")
	gainDB := flag.Float64("gain", 0, "Output gain applied to the beam in dB")
	multichannel := flag.Bool("multichannel", false, "Write every processed channel instead of the beam only")
	play := flag.Bool("play", false, "Play the output on the default device when done")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -mics 4 -direction 30 in.wav out.wav # Steer a 4-mic array to 30 degrees\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -profile desk.yaml in.ogg out.wav    # Use a saved array profile\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	logger := newLogger(*verbose)

	prof, err := arrayFlags.Profile()
	if err != nil {
		return err
	}

	job := fileJob{
		inputPath:    args[0],
		outputPath:   args[1],
		profile:      prof,
		bitDepth:     *bitDepth,
		blockFrames:  *blockFrames,
		gain:         dbToGain(*gainDB),
		multichannel: *multichannel,
		log:          logger,
	}

	start := time.Now()
	var stats *fileStats
	if *fast {
		stats, err = beamformFile[float32](job)
	} else {
		stats, err = beamformFile[float64](job)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Beamformed %s -> %s\n", filepath.Base(job.inputPath), filepath.Base(job.outputPath))
	fmt.Printf("  %d Hz, %d input channels, %d microphones, %d-bit output\n",
		stats.sampleRate, stats.channels, stats.microphones, job.bitDepth)
	fmt.Printf("  Steering: %d degrees (%s), latency %d samples\n",
		stats.direction, stats.angleMode, stats.latency)
	fmt.Printf("  %d frames in %d blocks, %d overflowing delays\n",
		stats.frames, stats.blocks, stats.overflows)
	if elapsed > 0 && stats.sampleRate > 0 {
		fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
			elapsed.Seconds(),
			float64(stats.frames)/float64(stats.sampleRate)/elapsed.Seconds())
	}

	if *play {
		return playFile(job.outputPath, logger)
	}
	return nil
}

// dbToGain converts decibels to a linear amplitude factor.
func dbToGain(db float64) float64 {
	return math.Pow(10, db/amplitudeDB)
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

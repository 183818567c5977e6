// Command beamform-live beamforms the default audio input device in real time
// and plays the steered signal on the default output device.
//
// Usage:
//
//	beamform-live -mics 4 -spacing 0.04
//	beamform-live -profile desk.yaml -in 8 -out 2
//
// While running, type commands on stdin to move the beam:
//
//	dir 45
//	mics 6
//	spacing 0.03
//	stats
//	quit
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"
	beamformer "github.com/tphakala/go-audio-beamformer"
	"github.com/tphakala/go-audio-beamformer/internal/profile"
	"golang.org/x/term"
)

const (
	defaultSampleRate      = 48000.0
	defaultFramesPerBuffer = 256
	defaultOutputChannels  = 2
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	arrayFlags := profile.RegisterFlags(flag.CommandLine)
	sampleRate := flag.Float64("rate", defaultSampleRate, "Stream sample rate in Hz")
	frames := flag.Int("frames", defaultFramesPerBuffer, "Frames per buffer")
	inChannels := flag.Int("in", 0, "Input channels to open (0 opens one per microphone)")
	outChannels := flag.Int("out", defaultOutputChannels, "Output channels; each receives the beam")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	logger := newLogger(*verbose)

	prof, err := arrayFlags.Profile()
	if err != nil {
		return err
	}
	cfg, err := prof.Config(*sampleRate)
	if err != nil {
		return err
	}
	cfg.Logger = logger

	bf, err := beamformer.New[float32](cfg)
	if err != nil {
		return fmt.Errorf("failed to create beamformer: %w", err)
	}
	if err := bf.Prepare(cfg.SampleRate, *frames); err != nil {
		return err
	}
	defer bf.Release()

	channels := *inChannels
	if channels <= 0 {
		channels = cfg.Microphones
	}
	proc := newProcessor(bf, channels, *frames)

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init: %w", err)
	}
	defer portaudio.Terminate() //nolint:errcheck

	stream, err := portaudio.OpenDefaultStream(channels, *outChannels, cfg.SampleRate, *frames, proc.callback)
	if err != nil {
		return fmt.Errorf("portaudio open stream: %w", err)
	}
	defer func() { _ = stream.Close() }()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("portaudio start: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"sample_rate":     cfg.SampleRate,
		"input_channels":  channels,
		"output_channels": *outChannels,
		"frames":          *frames,
		"microphones":     cfg.Microphones,
	}).Info("stream started")

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println(commandHelp)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = commandLoop(ctx, os.Stdin, os.Stdout, bf)

	if stopErr := stream.Stop(); stopErr != nil && err == nil {
		err = fmt.Errorf("portaudio stop: %w", stopErr)
	}

	st := bf.Stats()
	logger.WithFields(logrus.Fields{
		"blocks":    st.Blocks,
		"resets":    st.Resets,
		"overflows": st.Overflows,
	}).Info("stream stopped")

	return err
}

// commandLoop reads commands from r until quit, end of input or ctx is done.
func commandLoop(ctx context.Context, r io.Reader, w io.Writer, bf *beamformer.Beamformer[float32]) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(w, formatParams(bf.Params().Snapshot()))
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				<-ctx.Done()
				return nil
			}
			reply, err := handleCommand(bf.Params(), bf.Stats, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintln(w, "error:", err)
				continue
			}
			if reply != "" {
				fmt.Fprintln(w, reply)
			}
		}
	}
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

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	beamformer "github.com/tphakala/go-audio-beamformer"
)

// errQuit ends the command loop.
var errQuit = errors.New("quit")

const commandHelp = `commands:
  mics <n>        set the microphone count
  spacing <m>     set the spacing in meters
  dir <degrees>   set the steering direction
  show            print the live parameters
  stats           print the processing counters
  help            print this help
  quit            stop the stream`

// statsFunc reads the processing counters.
type statsFunc func() beamformer.Stats

// handleCommand applies one line of user input and returns the reply. Values
// outside the parameter ranges are clamped.
func handleCommand(params *beamformer.Parameters, stats statsFunc, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "quit", "exit", "q":
		return "", errQuit

	case "help", "?":
		return commandHelp, nil

	case "show":
		return formatParams(params.Snapshot()), nil

	case "stats":
		st := stats()
		return fmt.Sprintf("blocks=%d resets=%d overflows=%d latency=%d max_delay=%d steering=%s",
			st.Blocks, st.Resets, st.Overflows, st.Latency, st.MaxDelay, st.Steering), nil

	case "mics", "microphones":
		n, err := intArg(cmd, args)
		if err != nil {
			return "", err
		}
		params.SetMicrophones(n)

	case "spacing":
		v, err := floatArg(cmd, args)
		if err != nil {
			return "", err
		}
		params.SetSpacing(v)

	case "dir", "direction":
		n, err := intArg(cmd, args)
		if err != nil {
			return "", err
		}
		params.SetDirection(n)

	default:
		return "", fmt.Errorf("unknown command %q, try help", cmd)
	}

	return formatParams(params.Snapshot()), nil
}

func formatParams(cfg beamformer.ArrayConfig) string {
	return fmt.Sprintf("mics=%d spacing=%.3f dir=%d", cfg.Microphones, cfg.Spacing, cfg.Direction)
}

func intArg(cmd string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s takes one value", cmd)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cmd, err)
	}
	return n, nil
}

func floatArg(cmd string, args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s takes one value", cmd)
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cmd, err)
	}
	return v, nil
}

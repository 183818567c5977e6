// Package audiofile reads multichannel recordings for offline beamforming
// and writes the result back as PCM WAV.
//
// Every Source yields interleaved float32 samples in [-1, 1], whatever the
// container. WAV is decoded with go-audio/wav, Ogg Vorbis with
// jfreymuth/oggvorbis and MP3 with hajimehoshi/go-mp3.
package audiofile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Common errors.
var (
	// ErrUnsupportedFormat indicates a container or sample format that
	// cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidFile indicates a file that does not parse as its format.
	ErrInvalidFile = errors.New("invalid audio file")
)

// Source is a decoded audio stream.
type Source interface {
	// SampleRate of the stream in Hz.
	SampleRate() int

	// Channels is the number of interleaved channels.
	Channels() int

	// ReadSamples fills dst with interleaved samples and returns the number
	// of values written, always a whole number of frames. At the end of the
	// stream it returns 0, io.EOF.
	ReadSamples(dst []float32) (int, error)

	// Close releases the underlying file.
	Close() error
}

// Format identifies a container.
type Format string

// Supported containers.
const (
	FormatWAV    Format = "wav"
	FormatVorbis Format = "ogg"
	FormatMP3    Format = "mp3"
)

// FormatFromPath picks the container from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV, nil
	case ".ogg", ".oga":
		return FormatVorbis, nil
	case ".mp3":
		return FormatMP3, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Open opens path and returns a Source for its container.
func Open(path string) (Source, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	var src Source
	switch format {
	case FormatWAV:
		src, err = newWAVSource(f)
	case FormatVorbis:
		src, err = newVorbisSource(f)
	case FormatMP3:
		src, err = newMP3Source(f)
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return src, nil
}

// wholeFrames rounds n down to a multiple of channels.
func wholeFrames(n, channels int) int {
	if channels <= 0 {
		return 0
	}
	return n - n%channels
}

package audiofile

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// pcmDecoder is the subset of wav.Decoder used by wavSource.
type pcmDecoder interface {
	PCMBuffer(buf *audio.IntBuffer) (int, error)
}

type wavSource struct {
	file       io.Closer
	dec        pcmDecoder
	sampleRate int
	channels   int
	bitDepth   int
	scale      float32
	intBuf     *audio.IntBuffer
}

func newWAVSource(f *os.File) (*wavSource, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file: %s", ErrInvalidFile, f.Name())
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: WAV audio format %d, only PCM is supported",
			ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	format := dec.Format()
	bitDepth := int(dec.BitDepth)
	scale, err := decodeScale(bitDepth)
	if err != nil {
		return nil, err
	}

	return &wavSource{
		file:       f,
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   bitDepth,
		scale:      scale,
		intBuf:     &audio.IntBuffer{Format: format, SourceBitDepth: bitDepth},
	}, nil
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return s.file.Close() }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	want := wholeFrames(len(dst), s.channels)
	if want == 0 {
		return 0, nil
	}
	if cap(s.intBuf.Data) < want {
		s.intBuf.Data = make([]int, want)
	}
	s.intBuf.Data = s.intBuf.Data[:want]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("failed to read audio data: %w", err)
	}
	n = wholeFrames(n, s.channels)
	if n == 0 {
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v) / s.scale
	}
	return n, nil
}

// decodeScale returns the divisor that maps integer PCM to [-1, 1).
func decodeScale(bitDepth int) (float32, error) {
	switch bitDepth {
	case bitsPerSample16:
		return scaleInt16, nil
	case bitsPerSample24:
		return scaleInt24, nil
	case bitsPerSample32:
		return scaleInt32, nil
	default:
		return 0, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedFormat, bitDepth)
	}
}

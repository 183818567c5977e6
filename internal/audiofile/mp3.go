package audiofile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// mp3Reader is the subset of gomp3.Decoder used by mp3Source.
type mp3Reader interface {
	Read(p []byte) (int, error)
	SampleRate() int
}

// mp3Source decodes MP3. go-mp3 always produces 16-bit little-endian
// stereo, which suits two-microphone recordings.
type mp3Source struct {
	file       io.Closer
	dec        mp3Reader
	sampleRate int
	buf        []byte
	pending    int // undecoded bytes carried from the previous read
}

func newMP3Source(f *os.File) (*mp3Source, error) {
	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return &mp3Source{
		file:       f,
		dec:        dec,
		sampleRate: dec.SampleRate(),
	}, nil
}

func (s *mp3Source) SampleRate() int { return s.sampleRate }
func (s *mp3Source) Channels() int   { return mp3Channels }
func (s *mp3Source) Close() error    { return s.file.Close() }

func (s *mp3Source) ReadSamples(dst []float32) (int, error) {
	want := wholeFrames(len(dst), mp3Channels)
	if want == 0 {
		return 0, nil
	}

	need := want * bytesPerSample16
	if cap(s.buf) < need {
		grown := make([]byte, need)
		copy(grown, s.buf[:s.pending])
		s.buf = grown
	}
	s.buf = s.buf[:need]

	n, err := s.dec.Read(s.buf[s.pending:])
	n += s.pending
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("failed to read audio data: %w", err)
	}

	frameBytes := mp3Channels * bytesPerSample16
	usable := n - n%frameBytes
	if usable == 0 {
		s.pending = 0
		return 0, io.EOF
	}

	samples := usable / bytesPerSample16
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[i*bytesPerSample16:]))
		dst[i] = float32(v) / scaleInt16
	}

	// Keep a trailing partial frame for the next call.
	s.pending = copy(s.buf, s.buf[usable:n])
	return samples, nil
}

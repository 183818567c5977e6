package audiofile

import (
	"fmt"
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"
)

// oggReader is the subset of oggvorbis.Reader used by vorbisSource.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read(p []float32) (int, error)
}

// vorbisSource decodes Ogg Vorbis. Ambisonic recordings are commonly
// distributed this way with four or more channels.
type vorbisSource struct {
	file       io.Closer
	dec        oggReader
	sampleRate int
	channels   int
}

func newVorbisSource(f *os.File) (*vorbisSource, error) {
	dec, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return &vorbisSource{
		file:       f,
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}

func (s *vorbisSource) SampleRate() int { return s.sampleRate }
func (s *vorbisSource) Channels() int   { return s.channels }
func (s *vorbisSource) Close() error    { return s.file.Close() }

func (s *vorbisSource) ReadSamples(dst []float32) (int, error) {
	want := wholeFrames(len(dst), s.channels)
	if want == 0 {
		return 0, nil
	}

	// Read returns interleaved values, never splitting a frame when the
	// buffer holds whole frames.
	n, err := s.dec.Read(dst[:want])
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	if err == io.EOF {
		err = nil
	}
	return n, err
}

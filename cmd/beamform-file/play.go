package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
	"github.com/tphakala/go-audio-beamformer/internal/audiofile"
)

const (
	bytesPerFloat32 = 4
	playPollDelay   = 50 * time.Millisecond
)

// sourceReader streams a Source as little-endian float32 bytes.
type sourceReader struct {
	src     audiofile.Source
	samples []float32
	pending []byte
	buf     []byte
}

func newSourceReader(src audiofile.Source, chunkFrames int) *sourceReader {
	n := chunkFrames * src.Channels()
	return &sourceReader{
		src:     src,
		samples: make([]float32, n),
		buf:     make([]byte, n*bytesPerFloat32),
	}
}

func (r *sourceReader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		n, err := r.src.ReadSamples(r.samples)
		if n == 0 {
			if err == nil {
				err = io.EOF
			}
			return 0, err
		}
		for i, v := range r.samples[:n] {
			binary.LittleEndian.PutUint32(r.buf[i*bytesPerFloat32:], math.Float32bits(v))
		}
		r.pending = r.buf[:n*bytesPerFloat32]
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// playFile plays a WAV file on the default output device and returns when
// playback has finished.
func playFile(path string, log logrus.FieldLogger) error {
	src, err := audiofile.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   src.SampleRate(),
		ChannelCount: src.Channels(),
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("failed to open audio output: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(newSourceReader(src, defaultBlockFrames))
	defer func() { _ = player.Close() }()

	log.WithField("output", path).Info("playing")
	player.Play()
	for player.IsPlaying() {
		time.Sleep(playPollDelay)
	}
	if err := player.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

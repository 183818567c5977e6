package audiofile

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Format Detection Tests
// =============================================================================

func TestFormatFromPath(t *testing.T) {
	testCases := []struct {
		path string
		want Format
	}{
		{"array.wav", FormatWAV},
		{"ARRAY.WAV", FormatWAV},
		{"take1.wave", FormatWAV},
		{"ambisonic.ogg", FormatVorbis},
		{"ambisonic.oga", FormatVorbis},
		{"stereo.mp3", FormatMP3},
	}
	for _, tc := range testCases {
		got, err := FormatFromPath(tc.path)
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.want, got, tc.path)
	}

	_, err := FormatFromPath("notes.flac")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestOpen_FileNotFound(t *testing.T) {
	_, err := Open("/nonexistent/file.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestOpen_InvalidWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a wav file"), 0o644))

	_, err := Open(path)
	require.ErrorIs(t, err, ErrInvalidFile)
}

func TestOpen_InvalidVorbis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.ogg")
	require.NoError(t, os.WriteFile(path, []byte("not an ogg stream"), 0o644))

	_, err := Open(path)
	require.ErrorIs(t, err, ErrInvalidFile)
}

// =============================================================================
// WAV Tests
// =============================================================================

func writeTestWAV[F float32 | float64](t *testing.T, bitDepth, channels int, samples []F) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wav")
	w, err := Create(path, 48000, bitDepth, channels)
	require.NoError(t, err)
	require.NoError(t, Write(w, samples))
	require.NoError(t, w.Close())
	return path
}

func readAll(t *testing.T, src Source, chunk int) []float32 {
	t.Helper()
	var out []float32
	buf := make([]float32, chunk)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
	}
}

func TestWAV_RoundTrip16(t *testing.T) {
	// Three channels, four frames.
	in := []float32{
		0, 0.5, -0.5,
		0.25, -0.25, 1,
		-1, 0.125, 0,
		0.75, 0, -0.75,
	}
	path := writeTestWAV(t, 16, 3, in)

	src, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	assert.Equal(t, 48000, src.SampleRate())
	assert.Equal(t, 3, src.Channels())

	got := readAll(t, src, 7) // not a whole number of frames
	require.Len(t, got, len(in))
	for i := range in {
		assert.InDelta(t, in[i], got[i], 1e-4, "sample %d", i)
	}
}

func TestWAV_RoundTrip24(t *testing.T) {
	in := []float64{0.1, -0.2, 0.3, -0.4}
	path := writeTestWAV(t, 24, 2, in)

	src, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	got := readAll(t, src, 64)
	require.Len(t, got, len(in))
	for i := range in {
		assert.InDelta(t, in[i], float64(got[i]), 1e-6, "sample %d", i)
	}
}

func TestWAV_HeaderSizes(t *testing.T) {
	path := writeTestWAV(t, 16, 2, make([]float32, 10))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, wavHeaderSize+20)

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, uint32(wavRiffHeaderSize+20), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[22:24]))
	assert.Equal(t, uint32(20), binary.LittleEndian.Uint32(data[40:44]))
}

func TestWAVSource_ShortBuffer(t *testing.T) {
	path := writeTestWAV(t, 16, 4, make([]float32, 8))
	src, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	n, err := src.ReadSamples(make([]float32, 3))
	require.NoError(t, err)
	assert.Zero(t, n, "a buffer shorter than one frame reads nothing")
}

func TestWriter_Validation(t *testing.T) {
	dir := t.TempDir()
	_, err := Create(filepath.Join(dir, "a.wav"), 48000, 8, 1)
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Create(filepath.Join(dir, "b.wav"), 0, 16, 1)
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Create(filepath.Join(dir, "missing", "c.wav"), 48000, 16, 1)
	require.Error(t, err)
}

func TestQuantize(t *testing.T) {
	assert.Equal(t, 32767, quantize(1, maxInt16))
	assert.Equal(t, 32767, quantize(2, maxInt16), "clipped")
	assert.Equal(t, -32767, quantize(-1, maxInt16))
	assert.Equal(t, 16384, quantize(0.5, maxInt16))
	assert.Equal(t, 0, quantize(0, maxInt16))
	assert.Equal(t, 0, quantize(math.NaN(), maxInt16))
}

func TestDecodeScale(t *testing.T) {
	s, err := decodeScale(24)
	require.NoError(t, err)
	assert.InDelta(t, scaleInt24, s, 0)

	_, err = decodeScale(12)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

// =============================================================================
// MP3 Tests
// =============================================================================

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fakeMP3 returns its chunks one Read at a time.
type fakeMP3 struct {
	chunks [][]byte
}

func (f *fakeMP3) SampleRate() int { return 44100 }

func (f *fakeMP3) Read(p []byte) (int, error) {
	if len(f.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, f.chunks[0])
	f.chunks[0] = f.chunks[0][n:]
	if len(f.chunks[0]) == 0 {
		f.chunks = f.chunks[1:]
	}
	return n, nil
}

func pcm16(values ...int16) []byte {
	var b bytes.Buffer
	for _, v := range values {
		_ = binary.Write(&b, binary.LittleEndian, v)
	}
	return b.Bytes()
}

func TestMP3Source_ConvertsPCM(t *testing.T) {
	src := &mp3Source{
		file:       nopCloser{},
		dec:        &fakeMP3{chunks: [][]byte{pcm16(16384, -16384, 0, 32767)}},
		sampleRate: 44100,
	}
	assert.Equal(t, 2, src.Channels())
	assert.Equal(t, 44100, src.SampleRate())

	got := readAll(t, src, 4)
	assert.Equal(t, []float32{0.5, -0.5, 0, 32767.0 / 32768.0}, got)
}

func TestMP3Source_CarriesPartialFrame(t *testing.T) {
	all := pcm16(1000, 2000, 3000, 4000)
	src := &mp3Source{
		file: nopCloser{},
		// First read ends mid-frame, second delivers the rest.
		dec: &fakeMP3{chunks: [][]byte{all[:6], all[6:]}},
	}

	dst := make([]float32, 4)
	n, err := src.ReadSamples(dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = src.ReadSamples(dst)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.InDelta(t, 3000.0/32768, dst[0], 1e-9)
	assert.InDelta(t, 4000.0/32768, dst[1], 1e-9)

	n, err = src.ReadSamples(dst)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

// =============================================================================
// Vorbis Tests
// =============================================================================

type fakeOgg struct {
	channels int
	data     []float32
}

func (f *fakeOgg) SampleRate() int { return 48000 }
func (f *fakeOgg) Channels() int   { return f.channels }

func (f *fakeOgg) Read(p []float32) (int, error) {
	if len(f.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestVorbisSource_WholeFrames(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	src := &vorbisSource{
		file:     nopCloser{},
		dec:      &fakeOgg{channels: 4, data: data},
		channels: 4,
	}

	got := readAll(t, src, 6) // rounded down to one frame per read
	assert.Equal(t, data, got)
}

func TestVorbisSource_EOF(t *testing.T) {
	src := &vorbisSource{file: nopCloser{}, dec: &fakeOgg{channels: 2}, channels: 2}
	n, err := src.ReadSamples(make([]float32, 8))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

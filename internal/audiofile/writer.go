package audiofile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/tphakala/go-audio-beamformer/internal/simdops"
)

// Writer writes interleaved PCM WAV data without per-sample allocations.
// The header is written with placeholder sizes and patched on Close.
type Writer struct {
	w          *bufio.Writer
	ws         io.WriteSeeker
	closer     io.Closer
	sampleRate int
	bitDepth   int
	channels   int
	maxVal     float64
	dataSize   uint32
	byteBuf    []byte
}

// Create creates path and returns a Writer for it.
func Create(path string, sampleRate, bitDepth, channels int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	w, err := NewWriter(f, sampleRate, bitDepth, channels)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// NewWriter writes a WAV stream to ws. Supported bit depths are 16, 24 and 32.
func NewWriter(ws io.WriteSeeker, sampleRate, bitDepth, channels int) (*Writer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels", ErrUnsupportedFormat, sampleRate, channels)
	}
	maxVal, err := encodeScale(bitDepth)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		w:          bufio.NewWriterSize(ws, wavWriterBufferSize),
		ws:         ws,
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
		channels:   channels,
		maxVal:     maxVal,
	}
	if err := w.writeHeader(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	bytesPerSample := w.bitDepth / bitsPerByte
	byteRate := w.sampleRate * w.channels * bytesPerSample
	blockAlign := w.channels * bytesPerSample

	header := make([]byte, wavHeaderSize)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 0) // patched on Close
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], wavPCMSubchunkSize)
	binary.LittleEndian.PutUint16(header[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(w.channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(w.sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(w.bitDepth))

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], 0) // patched on Close

	_, err := w.w.Write(header)
	return err
}

// Channels returns the number of interleaved channels.
func (w *Writer) Channels() int { return w.channels }

// Write encodes interleaved samples in [-1, 1]. Out-of-range values are
// clipped.
func Write[F simdops.Float](w *Writer, samples []F) error {
	bytesPerSample := w.bitDepth / bitsPerByte
	needed := len(samples) * bytesPerSample
	if cap(w.byteBuf) < needed {
		w.byteBuf = make([]byte, needed)
	}
	buf := w.byteBuf[:needed]

	for i, v := range samples {
		s := quantize(float64(v), w.maxVal)
		switch w.bitDepth {
		case bitsPerSample16:
			binary.LittleEndian.PutUint16(buf[i*bytesPerSample16:], uint16(int16(s)))
		case bitsPerSample24:
			buf[i*bytesPerSample24] = byte(s)
			buf[i*bytesPerSample24+1] = byte(s >> bitShift8)
			buf[i*bytesPerSample24+2] = byte(s >> bitShift16)
		default:
			binary.LittleEndian.PutUint32(buf[i*bytesPerSample32:], uint32(int32(s)))
		}
	}

	written, err := w.w.Write(buf)
	w.dataSize += uint32(written)
	return err
}

// Close flushes buffered data, patches the header sizes and closes the file
// if the Writer created it.
func (w *Writer) Close() error {
	if err := w.finish(); err != nil {
		if w.closer != nil {
			_ = w.closer.Close()
		}
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

func (w *Writer) finish() error {
	if err := w.w.Flush(); err != nil {
		return err
	}

	sizeBytes := make([]byte, uint32Size)

	binary.LittleEndian.PutUint32(sizeBytes, wavRiffHeaderSize+w.dataSize)
	if _, err := w.ws.Seek(wavFileSizeOffset, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.ws.Write(sizeBytes); err != nil {
		return err
	}

	binary.LittleEndian.PutUint32(sizeBytes, w.dataSize)
	if _, err := w.ws.Seek(wavDataSizeOffset, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.ws.Write(sizeBytes); err != nil {
		return err
	}

	_, err := w.ws.Seek(0, io.SeekEnd)
	return err
}

// quantize clips v to [-1, 1] and scales it to an integer code.
func quantize(v, maxVal float64) int {
	if math.IsNaN(v) {
		return 0
	}
	v = max(-1, min(1, v))
	if v >= 0 {
		return int(v*maxVal + 0.5)
	}
	return int(v*maxVal - 0.5)
}

// encodeScale returns the largest positive code for bitDepth.
func encodeScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16, nil
	case bitsPerSample24:
		return maxInt24, nil
	case bitsPerSample32:
		return maxInt32, nil
	default:
		return 0, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedFormat, bitDepth)
	}
}

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	beamformer "github.com/tphakala/go-audio-beamformer"
	"github.com/tphakala/go-audio-beamformer/internal/audiofile"
	"github.com/tphakala/go-audio-beamformer/internal/profile"
	"github.com/tphakala/go-audio-beamformer/internal/simdops"
)

// fileJob describes one offline run.
type fileJob struct {
	inputPath    string
	outputPath   string
	profile      *profile.Profile
	bitDepth     int
	blockFrames  int
	gain         float64 // linear; 0 or 1 leaves the beam unchanged
	multichannel bool
	log          logrus.FieldLogger
}

// fileStats summarizes a finished run.
type fileStats struct {
	sampleRate  int
	channels    int
	microphones int
	direction   int
	angleMode   beamformer.AngleMode
	frames      int64
	blocks      uint64
	overflows   uint64
	latency     int
}

// beamformFile streams the input through a beamformer block by block.
func beamformFile[F beamformer.Float](job fileJob) (stats *fileStats, err error) {
	if job.blockFrames <= 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", job.blockFrames)
	}

	// 1. Open input
	src, err := audiofile.Open(job.inputPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	channels := src.Channels()
	job.log.WithFields(logrus.Fields{
		"input":       job.inputPath,
		"sample_rate": src.SampleRate(),
		"channels":    channels,
	}).Debug("input opened")

	// 2. Create beamformer
	b, err := newBeamformer[F](job, src.SampleRate(), channels)
	if err != nil {
		return nil, err
	}
	mics := b.Params().Microphones()

	// 3. Create output writer
	outChannels := monoChannels
	if job.multichannel {
		outChannels = channels
	}
	out, err := audiofile.Create(job.outputPath, src.SampleRate(), job.bitDepth, outChannels)
	if err != nil {
		return nil, err
	}
	// Close output, capturing close errors on success path (the header is
	// patched on close)
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()

	// 4. Preallocate buffers
	bufs := newBlockBuffers[F](channels, job.blockFrames, outChannels)

	stats = &fileStats{
		sampleRate:  src.SampleRate(),
		channels:    channels,
		microphones: mics,
		direction:   b.Params().Direction(),
		angleMode:   b.Config().AngleMode,
	}
	progress := newProgressTracker(src.SampleRate(), job.log)
	ops := simdops.For[F]()

	// 5. Main processing loop
	for {
		n, err := src.ReadSamples(bufs.raw)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		if n == 0 {
			break
		}
		frames := n / channels

		block := bufs.block(frames)
		deinterleaveInto(block, bufs.raw[:n])
		b.Process(block)
		if job.gain != 0 && job.gain != 1 {
			ops.Scale(block[0], block[0], F(job.gain))
		}

		if job.multichannel {
			interleaveInto(bufs.interleaved, block)
			err = audiofile.Write(out, bufs.interleaved[:frames*channels])
		} else {
			err = audiofile.Write(out, block[0])
		}
		if err != nil {
			return nil, fmt.Errorf("failed to write audio data: %w", err)
		}

		stats.frames += int64(frames)
		progress.reportIfNeeded(stats.frames)
	}

	st := b.Stats()
	stats.blocks = st.Blocks
	stats.overflows = st.Overflows
	stats.latency = st.Latency
	return stats, nil
}

// newBeamformer builds a beamformer for the job at the input sample rate.
func newBeamformer[F beamformer.Float](job fileJob, sampleRate, channels int) (*beamformer.Beamformer[F], error) {
	cfg, err := job.profile.Config(float64(sampleRate))
	if err != nil {
		return nil, err
	}
	cfg.Logger = job.log

	if channels < cfg.Microphones {
		job.log.WithFields(logrus.Fields{
			"channels":    channels,
			"microphones": cfg.Microphones,
		}).Warn("input has fewer channels than microphones; averaging over the channels present")
	}

	b, err := beamformer.New[F](cfg)
	if err != nil {
		return nil, err
	}
	if err := b.Prepare(float64(sampleRate), job.blockFrames); err != nil {
		return nil, err
	}
	return b, nil
}

// blockBuffers holds the preallocated buffers for one run.
type blockBuffers[F beamformer.Float] struct {
	raw         []float32
	channelBufs [][]F
	views       [][]F
	interleaved []F
}

// newBlockBuffers preallocates buffers for blocks of blockFrames frames.
func newBlockBuffers[F beamformer.Float](channels, blockFrames, outChannels int) *blockBuffers[F] {
	b := &blockBuffers[F]{
		raw:         make([]float32, blockFrames*channels),
		channelBufs: make([][]F, channels),
		views:       make([][]F, channels),
	}
	for ch := range b.channelBufs {
		b.channelBufs[ch] = make([]F, blockFrames)
	}
	if outChannels > monoChannels {
		b.interleaved = make([]F, blockFrames*outChannels)
	}
	return b
}

// block returns per-channel views of the first frames samples.
func (b *blockBuffers[F]) block(frames int) [][]F {
	for ch, buf := range b.channelBufs {
		b.views[ch] = buf[:frames]
	}
	return b.views
}

// deinterleaveInto converts interleaved float32 samples into per-channel
// buffers of the processing precision.
func deinterleaveInto[F beamformer.Float](dst [][]F, data []float32) {
	numChannels := len(dst)
	if numChannels == 0 {
		return
	}
	frames := len(data) / numChannels

	// Fast path for stereo
	if numChannels == stereoChannels {
		buf0, buf1 := dst[0], dst[1]
		for i := range frames {
			idx := i * stereoChannels
			buf0[i] = F(data[idx])
			buf1[i] = F(data[idx+1])
		}
		return
	}

	for i := range frames {
		base := i * numChannels
		for ch := range numChannels {
			dst[ch][i] = F(data[base+ch])
		}
	}
}

// interleaveInto writes per-channel buffers to dst frame by frame.
func interleaveInto[F beamformer.Float](dst []F, channels [][]F) {
	numChannels := len(channels)
	for ch, buf := range channels {
		for i, v := range buf {
			dst[i*numChannels+ch] = v
		}
	}
}

// progressTracker logs progress at regular intervals of audio time.
type progressTracker struct {
	sampleRate int
	next       int64
	log        logrus.FieldLogger
}

// newProgressTracker creates a new progress tracker.
func newProgressTracker(sampleRate int, log logrus.FieldLogger) *progressTracker {
	interval := int64(sampleRate) * progressIntervalSeconds
	return &progressTracker{
		sampleRate: sampleRate,
		next:       interval,
		log:        log,
	}
}

// reportIfNeeded logs once per interval crossed.
func (p *progressTracker) reportIfNeeded(frames int64) {
	if p.sampleRate <= 0 || frames < p.next {
		return
	}
	p.log.WithField("seconds", frames/int64(p.sampleRate)).Debug("progress")
	interval := int64(p.sampleRate) * progressIntervalSeconds
	for p.next <= frames {
		p.next += interval
	}
}

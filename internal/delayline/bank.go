// Package delayline implements the per-channel circular delay lines used by
// the beamformer engine.
//
// A Bank owns one fixed-capacity ring per channel. Each ring keeps a write
// cursor that persists across blocks and a read cursor that is recomputed
// once per block from the requested delay. The Bank is not safe for
// concurrent use: it is driven from a single audio thread.
package delayline

import (
	"github.com/tphakala/go-audio-beamformer/internal/simdops"
)

// Line is a single channel's ring buffer.
type Line[F simdops.Float] struct {
	data     []F
	writePos int
	readPos  int
}

// Bank holds one Line per channel, all with the same capacity.
type Bank[F simdops.Float] struct {
	lines    []Line[F]
	capacity int
}

// NewBank creates a bank with the given channel count and capacity.
func NewBank[F simdops.Float](channels, capacity int) *Bank[F] {
	b := &Bank[F]{}
	b.Reset(channels, capacity)
	return b
}

// Reset (re)allocates channels rings of capacity samples, zero-fills them and
// rewinds every cursor. Storage is reused when the shape is unchanged, so
// calling Reset repeatedly with the same arguments does not allocate.
func (b *Bank[F]) Reset(channels, capacity int) {
	if channels < 0 {
		channels = 0
	}
	if capacity < minCapacity {
		capacity = minCapacity
	}

	if len(b.lines) != channels || b.capacity != capacity {
		b.lines = make([]Line[F], channels)
		for ch := range b.lines {
			b.lines[ch].data = make([]F, capacity)
		}
		b.capacity = capacity
		return
	}

	for ch := range b.lines {
		clear(b.lines[ch].data)
		b.lines[ch].writePos = 0
		b.lines[ch].readPos = 0
	}
}

// Channels returns the number of lines in the bank.
func (b *Bank[F]) Channels() int {
	return len(b.lines)
}

// Capacity returns the ring size of every line in samples.
func (b *Bank[F]) Capacity() int {
	return b.capacity
}

// Write stores sample at the channel's write cursor advanced by index.
// The cursor itself is not moved; call Advance once the block is done.
func (b *Bank[F]) Write(channel, index int, sample F) {
	l := &b.lines[channel]
	l.data[b.wrap(l.writePos+index)] = sample
}

// ReadDelayed returns the sample delaySamples behind the write cursor,
// offset by index within the current block. Delays of capacity or more wrap
// around the ring instead of failing.
func (b *Bank[F]) ReadDelayed(channel, delaySamples, index int) F {
	l := &b.lines[channel]
	return l.data[b.wrap(l.writePos-delaySamples+index)]
}

// Advance moves the channel's write cursor forward by n samples.
func (b *Bank[F]) Advance(channel, n int) {
	l := &b.lines[channel]
	l.writePos = b.wrap(l.writePos + n)
}

// Seek positions the channel's read cursor delaySamples behind its write
// cursor. The engine calls it once per block.
func (b *Bank[F]) Seek(channel, delaySamples int) {
	l := &b.lines[channel]
	l.readPos = b.wrap(l.writePos - delaySamples)
}

// WriteCursor returns the channel's persistent write position.
func (b *Bank[F]) WriteCursor(channel int) int {
	return b.lines[channel].writePos
}

// ReadCursor returns the read position computed by the last Seek.
func (b *Bank[F]) ReadCursor(channel int) int {
	return b.lines[channel].readPos
}

// Process replaces samples with the channel's history delayed by
// delaySamples and records the original samples in the ring.
//
// Each sample is read before the fresh one is written, so a delay of d
// returns exactly the sample written d steps earlier, even when d is shorter
// than the block. A delay of zero leaves samples untouched but still records
// them, keeping the history continuous for later blocks.
func (b *Bank[F]) Process(channel int, samples []F, delaySamples int) {
	l := &b.lines[channel]
	n := len(samples)

	if delaySamples == 0 {
		b.record(l, samples)
		l.readPos = l.writePos
		return
	}

	b.Seek(channel, delaySamples)
	r, w := l.readPos, l.writePos
	for i := range n {
		in := samples[i]
		samples[i] = l.data[r]
		l.data[w] = in
		r++
		if r == b.capacity {
			r = 0
		}
		w++
		if w == b.capacity {
			w = 0
		}
	}
	l.readPos = r
	l.writePos = w
}

// Data returns the channel's raw ring storage. Intended for inspection in
// tests and diagnostics; callers must not retain it across Reset.
func (b *Bank[F]) Data(channel int) []F {
	return b.lines[channel].data
}

// record copies samples into the ring starting at the write cursor,
// splitting the copy at the wrap point.
func (b *Bank[F]) record(l *Line[F], samples []F) {
	for len(samples) > 0 {
		w := l.writePos
		n := copy(l.data[w:], samples)
		samples = samples[n:]
		l.writePos = b.wrap(w + n)
	}
}

// wrap reduces pos into [0, capacity), handling negative positions and
// offsets larger than one full ring.
func (b *Bank[F]) wrap(pos int) int {
	pos %= b.capacity
	if pos < 0 {
		pos += b.capacity
	}
	return pos
}

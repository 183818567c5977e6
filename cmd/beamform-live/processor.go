package main

import (
	beamformer "github.com/tphakala/go-audio-beamformer"
)

// processor adapts a beamformer to the non-interleaved stream callback.
type processor struct {
	bf      *beamformer.Beamformer[float32]
	scratch [][]float32
	views   [][]float32
}

func newProcessor(bf *beamformer.Beamformer[float32], channels, framesPerBuffer int) *processor {
	p := &processor{
		bf:      bf,
		scratch: make([][]float32, channels),
		views:   make([][]float32, channels),
	}
	for ch := range p.scratch {
		p.scratch[ch] = make([]float32, framesPerBuffer)
	}
	return p
}

// callback copies the input block, beamforms it and sends the beam to every
// output channel. The input buffers belong to the audio driver and are not
// modified.
func (p *processor) callback(in, out [][]float32) {
	channels := min(len(in), len(p.scratch))
	for ch := range channels {
		n := len(in[ch])
		if cap(p.scratch[ch]) < n {
			p.scratch[ch] = make([]float32, n)
		}
		p.views[ch] = p.scratch[ch][:n]
		copy(p.views[ch], in[ch])
	}

	block := p.views[:channels]
	if channels > 0 {
		p.bf.Process(block)
	}

	for _, o := range out {
		if channels == 0 {
			clear(o)
			continue
		}
		n := copy(o, block[0])
		clear(o[n:])
	}
}

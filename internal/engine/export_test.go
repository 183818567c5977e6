package engine

import "github.com/tphakala/go-audio-beamformer/internal/delayline"

// Export internals for testing.
// This file uses the _test.go suffix so it's only included in test builds.

// BankForTest returns the engine's delay line bank.
func (e *Engine[F]) BankForTest() *delayline.Bank[F] {
	return e.bank
}

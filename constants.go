package beamformer

// Array parameter bounds and defaults.
// NOTE: These are duplicated in internal/engine because internal packages
// cannot import the main package (would create import cycle).
const (
	MinMicrophones     = 2
	MaxMicrophones     = 64
	DefaultMicrophones = 2

	MinSpacing     = 0.01 // meters
	MaxSpacing     = 0.5  // meters
	DefaultSpacing = 0.05 // meters

	MinDirection     = 0   // degrees
	MaxDirection     = 360 // degrees
	DefaultDirection = 90  // degrees
)

// Propagation and sizing constants.
const (
	// DefaultSpeedOfSound in m/s.
	DefaultSpeedOfSound = 345.0

	// LegacyDelayCapacity is the fixed delay line size of the reference plugin.
	LegacyDelayCapacity = 256
)

// Common sample rates.
const (
	RateCD       = 44100
	RateDAT      = 48000
	RateHiRes96  = 96000
	RateHiRes192 = 192000
)

// Channel constants
const (
	monoChannels   = 1
	stereoChannels = 2
	minBlockSize   = 0
)

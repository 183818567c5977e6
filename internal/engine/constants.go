package engine

// Array parameter bounds.
// NOTE: These are duplicated in the main beamformer package because internal
// packages cannot import the main package (would create import cycle).
const (
	MinMicrophones = 2
	MaxMicrophones = 64

	MinSpacing = 0.01 // meters
	MaxSpacing = 0.5  // meters

	MinDirection = 0   // degrees
	MaxDirection = 360 // degrees
)

// Propagation constants.
const (
	// DefaultSpeedOfSound in m/s. The reference array model uses 345.
	DefaultSpeedOfSound = 345.0

	degreesToRadians = 3.141592653589793 / 180.0
)

// Delay line sizing.
const (
	// LegacyCapacity is the fixed ring size of the reference implementation.
	// It is too small for long arrays at high sample rates.
	LegacyCapacity = 256

	// capacityHeadroom is added on top of the worst-case delay.
	capacityHeadroom = 1

	// unsetMicrophones marks a bank that has never been sized, forcing a
	// reset on the first block.
	unsetMicrophones = -1
)

package main

// Default command-line flag values
const (
	defaultSampleRate = 48000.0 // DAT/DVD sample rate
	defaultName       = "array"
)

// Test signal parameters
const (
	testSignalFrequency = 1000.0 // 1 kHz test tone
	testSignalSamples   = 1024   // Default test signal length
	testSignalAmplitude = 0.5
)

// Demo settings
const (
	demoMicrophones = 4
	demoSpacing     = 0.05
	demoAngleStep   = 45
	demoMaxAngle    = 180
)

// Memory conversion
const (
	bytesPerKilobyte = 1024
)

// Write the profile to stdout when -dump-profile is given this path.
const stdoutPath = "-"

package analysis

// Analysis defaults.
const (
	defaultFFTSize   = 1024
	defaultAngleStep = 5 // degrees
	fullCircle       = 360

	// minGainDB floors the reported gain so silent outputs stay finite.
	minGainDB = -120.0

	powerDB     = 10.0 // dB per decade of power
	amplitudeDB = 20.0 // dB per decade of amplitude

	degreesToRadians = 3.141592653589793 / 180.0

	// minWindowsPerDelay keeps a delayed impulse inside the FFT window.
	minWindowsPerDelay = 4

	// hermitianDivisor gives the real FFT output length n/2+1.
	hermitianDivisor = 2
)

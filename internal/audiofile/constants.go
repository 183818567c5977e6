package audiofile

// Sample format constants
const (
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32
	bitsPerByte     = 8

	bytesPerSample16 = 2
	bytesPerSample24 = 3
	bytesPerSample32 = 4

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// Full-scale divisors used when decoding, so -1.0 maps to the most
	// negative code.
	scaleInt16 = 32768.0
	scaleInt24 = 8388608.0
	scaleInt32 = 2147483648.0

	bitShift8  = 8
	bitShift16 = 16
)

// WAV format constants
const (
	wavHeaderSize       = 44
	wavRiffHeaderSize   = 36 // file size - 8 = riffHeaderSize + dataSize
	wavPCMSubchunkSize  = 16
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
	wavFileSizeOffset   = 4
	wavDataSizeOffset   = 40
	uint32Size          = 4

	wavWriterBufferSize = 256 * 1024
)

// Decoder constants
const (
	// mp3Channels is fixed: go-mp3 always decodes to interleaved stereo.
	mp3Channels = 2
)

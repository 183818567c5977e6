package delayline

// Bank sizing limits.
const (
	// minCapacity is the smallest ring a line can have; a zero-length ring
	// would make every modulo operation undefined.
	minCapacity = 1
)

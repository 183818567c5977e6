package profile

import (
	"errors"
	"flag"
)

// Flags binds the array settings to command-line flags. Flags given on the
// command line override the profile file.
type Flags struct {
	fs *flag.FlagSet

	path          string
	legacy        bool
	microphones   int
	spacing       float64
	direction     int
	speedOfSound  float64
	angleMode     string
	delayCapacity int
	overflow      string
}

// RegisterFlags adds the array flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.path, "profile", "", "YAML array profile to load")
	fs.BoolVar(&f.legacy, "legacy", false, "Start from the reference plugin preset (256-sample wrapping delay lines)")
	fs.IntVar(&f.microphones, "mics", 0, "Number of microphones (2-64)")
	fs.Float64Var(&f.spacing, "spacing", 0, "Microphone spacing in meters (0.01-0.5)")
	fs.IntVar(&f.direction, "direction", 0, "Steering direction in degrees (0-360)")
	fs.Float64Var(&f.speedOfSound, "speed", 0, "Speed of sound in m/s")
	fs.StringVar(&f.angleMode, "angle-mode", "", "Steering angle mode: literal, degrees")
	fs.IntVar(&f.delayCapacity, "capacity", 0, "Delay line size in samples (0 derives it from the sample rate)")
	fs.StringVar(&f.overflow, "overflow", "", "Overflow policy for long delays: clamp, wrap")
	return f
}

// Profile loads the profile file, if any, and applies the flags that were
// set explicitly. Call it after fs has been parsed.
func (f *Flags) Profile() (*Profile, error) {
	if !f.fs.Parsed() {
		return nil, errors.New("flags not parsed")
	}

	p := &Profile{}
	if f.path != "" {
		loaded, err := Load(f.path)
		if err != nil {
			return nil, err
		}
		p = loaded
	}

	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "legacy":
			p.Legacy = f.legacy
		case "mics":
			p.Microphones = f.microphones
		case "spacing":
			p.Spacing = f.spacing
		case "direction":
			direction := f.direction
			p.Direction = &direction
		case "speed":
			p.SpeedOfSound = f.speedOfSound
		case "angle-mode":
			p.AngleMode = f.angleMode
		case "capacity":
			p.DelayCapacity = f.delayCapacity
		case "overflow":
			p.Overflow = f.overflow
		}
	})
	return p, nil
}

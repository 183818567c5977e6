// Package profile loads array profiles from YAML files.
//
// A profile describes one physical microphone array and how to steer it:
//
//	name: desk-array
//	sample_rate: 48000
//	microphones: 4
//	spacing: 0.05
//	direction: 30
//	angle_mode: degrees
//
// Omitted fields take the library defaults. Setting legacy: true starts from
// the reference plugin preset instead.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	beamformer "github.com/tphakala/go-audio-beamformer"
	"gopkg.in/yaml.v3"
)

// Profile is the on-disk form of a beamformer configuration.
type Profile struct {
	Name          string  `yaml:"name,omitempty"`
	Legacy        bool    `yaml:"legacy,omitempty"`
	SampleRate    float64 `yaml:"sample_rate,omitempty"`
	Microphones   int     `yaml:"microphones,omitempty"`
	Spacing       float64 `yaml:"spacing,omitempty"`
	Direction     *int    `yaml:"direction,omitempty"`
	SpeedOfSound  float64 `yaml:"speed_of_sound,omitempty"`
	AngleMode     string  `yaml:"angle_mode,omitempty"`
	DelayCapacity int     `yaml:"delay_capacity,omitempty"`
	Overflow      string  `yaml:"overflow,omitempty"`
}

// Load reads and parses the profile at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a YAML profile. Unknown keys are rejected so that typos do
// not silently fall back to defaults.
func Parse(data []byte) (*Profile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return &p, nil
		}
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &p, nil
}

// Config converts the profile to a validated beamformer configuration.
// sampleRate is used when the profile does not set one.
func (p *Profile) Config(sampleRate float64) (*beamformer.Config, error) {
	cfg := &beamformer.Config{}
	if p.Legacy {
		cfg = beamformer.LegacyConfig(0)
	}

	cfg.SampleRate = sampleRate
	if p.SampleRate != 0 {
		cfg.SampleRate = p.SampleRate
	}
	if p.Microphones != 0 {
		cfg.Microphones = p.Microphones
	}
	if p.Spacing != 0 {
		cfg.Spacing = p.Spacing
	}
	if p.Direction != nil {
		cfg.Direction = *p.Direction
	}
	if p.SpeedOfSound != 0 {
		cfg.SpeedOfSound = p.SpeedOfSound
	}
	if p.DelayCapacity != 0 {
		cfg.DelayCapacity = p.DelayCapacity
	}

	if p.AngleMode != "" {
		mode, err := beamformer.ParseAngleMode(p.AngleMode)
		if err != nil {
			return nil, err
		}
		cfg.AngleMode = mode
	}
	if p.Overflow != "" {
		policy, err := beamformer.ParseOverflowPolicy(p.Overflow)
		if err != nil {
			return nil, err
		}
		cfg.Overflow = policy
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromConfig builds a profile that reproduces cfg.
func FromConfig(name string, cfg *beamformer.Config) *Profile {
	direction := cfg.Direction
	return &Profile{
		Name:          name,
		SampleRate:    cfg.SampleRate,
		Microphones:   cfg.Microphones,
		Spacing:       cfg.Spacing,
		Direction:     &direction,
		SpeedOfSound:  cfg.SpeedOfSound,
		AngleMode:     cfg.AngleMode.String(),
		DelayCapacity: cfg.DelayCapacity,
		Overflow:      cfg.Overflow.String(),
	}
}

// Marshal encodes the profile as YAML.
func (p *Profile) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the profile to path.
func (p *Profile) Save(path string) error {
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

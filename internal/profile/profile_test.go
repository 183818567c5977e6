package profile

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	beamformer "github.com/tphakala/go-audio-beamformer"
)

// =============================================================================
// Parsing
// =============================================================================

func TestParse(t *testing.T) {
	p, err := Parse([]byte(`
name: desk-array
sample_rate: 44100
microphones: 4
spacing: 0.03
direction: 30
angle_mode: degrees
overflow: wrap
`))
	require.NoError(t, err)

	assert.Equal(t, "desk-array", p.Name)
	assert.InDelta(t, 44100, p.SampleRate, 0)
	assert.Equal(t, 4, p.Microphones)
	assert.InDelta(t, 0.03, p.Spacing, 0)
	require.NotNil(t, p.Direction)
	assert.Equal(t, 30, *p.Direction)
	assert.Equal(t, "degrees", p.AngleMode)
	assert.Equal(t, "wrap", p.Overflow)
}

func TestParse_Empty(t *testing.T) {
	p, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, &Profile{}, p)
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse([]byte("microphone: 4\n"))
	require.Error(t, err)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("microphones: [4\n"))
	require.Error(t, err)
}

// =============================================================================
// Conversion
// =============================================================================

func TestConfig_Defaults(t *testing.T) {
	cfg, err := (&Profile{}).Config(48000)
	require.NoError(t, err)

	assert.InDelta(t, 48000, cfg.SampleRate, 0)
	assert.Equal(t, beamformer.DefaultMicrophones, cfg.Microphones)
	assert.InDelta(t, beamformer.DefaultSpacing, cfg.Spacing, 0)
	assert.Equal(t, 0, cfg.Direction)
	assert.InDelta(t, beamformer.DefaultSpeedOfSound, cfg.SpeedOfSound, 0)
	assert.Equal(t, beamformer.AngleLiteral, cfg.AngleMode)
	assert.Equal(t, beamformer.OverflowClamp, cfg.Overflow)
	assert.Equal(t, 0, cfg.DelayCapacity)
}

func TestConfig_ProfileRateWins(t *testing.T) {
	cfg, err := (&Profile{SampleRate: 96000}).Config(48000)
	require.NoError(t, err)
	assert.InDelta(t, 96000, cfg.SampleRate, 0)
}

func TestConfig_Legacy(t *testing.T) {
	cfg, err := (&Profile{Legacy: true}).Config(48000)
	require.NoError(t, err)

	want := beamformer.LegacyConfig(48000)
	assert.Equal(t, want, cfg)
}

func TestConfig_LegacyOverride(t *testing.T) {
	p, err := Parse([]byte("legacy: true\nmicrophones: 8\noverflow: clamp\n"))
	require.NoError(t, err)

	cfg, err := p.Config(48000)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Microphones)
	assert.Equal(t, beamformer.LegacyDelayCapacity, cfg.DelayCapacity)
	assert.Equal(t, beamformer.OverflowClamp, cfg.Overflow)
	assert.Equal(t, beamformer.DefaultDirection, cfg.Direction)
}

func TestConfig_ExplicitZeroDirection(t *testing.T) {
	p, err := Parse([]byte("legacy: true\ndirection: 0\n"))
	require.NoError(t, err)
	require.NotNil(t, p.Direction)

	cfg, err := p.Config(48000)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Direction)
}

func TestConfig_Invalid(t *testing.T) {
	direction := 400
	testCases := []struct {
		name    string
		profile Profile
	}{
		{"no_rate", Profile{}},
		{"bad_angle_mode", Profile{SampleRate: 48000, AngleMode: "radians"}},
		{"bad_overflow", Profile{SampleRate: 48000, Overflow: "fold"}},
		{"too_many_microphones", Profile{SampleRate: 48000, Microphones: 65}},
		{"spacing_too_wide", Profile{SampleRate: 48000, Spacing: 0.6}},
		{"direction_out_of_range", Profile{SampleRate: 48000, Direction: &direction}},
		{"negative_capacity", Profile{SampleRate: 48000, DelayCapacity: -1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.profile.Config(0)
			require.ErrorIs(t, err, beamformer.ErrInvalidConfig)
		})
	}
}

// =============================================================================
// Encoding
// =============================================================================

func TestFromConfig_RoundTrip(t *testing.T) {
	cfg := beamformer.LegacyConfig(48000)
	cfg.Direction = 0

	data, err := FromConfig("legacy", cfg).Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: legacy")
	assert.Contains(t, string(data), "direction: 0")

	p, err := Parse(data)
	require.NoError(t, err)
	got, err := p.Config(0)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "array.yaml")

	cfg := &beamformer.Config{
		SampleRate:   44100,
		Microphones:  6,
		Spacing:      0.04,
		Direction:    120,
		SpeedOfSound: 343,
		AngleMode:    beamformer.AngleDegrees,
		Overflow:     beamformer.OverflowClamp,
	}
	require.NoError(t, FromConfig("ceiling", cfg).Save(path))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ceiling", p.Name)

	got, err := p.Config(0)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("spacng: 0.1\n"), 0o600))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

// =============================================================================
// Flags
// =============================================================================

func TestFlags_OverrideProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "array.yaml")
	require.NoError(t, os.WriteFile(path, []byte("microphones: 4\nspacing: 0.02\ndirection: 45\n"), 0o600))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-profile", path, "-direction", "0", "-angle-mode", "degrees"}))

	p, err := f.Profile()
	require.NoError(t, err)
	assert.Equal(t, 4, p.Microphones)
	assert.InDelta(t, 0.02, p.Spacing, 0)
	require.NotNil(t, p.Direction)
	assert.Equal(t, 0, *p.Direction)
	assert.Equal(t, "degrees", p.AngleMode)
}

func TestFlags_NoProfile(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-legacy", "-mics", "3"}))

	p, err := f.Profile()
	require.NoError(t, err)

	cfg, err := p.Config(48000)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Microphones)
	assert.Equal(t, beamformer.LegacyDelayCapacity, cfg.DelayCapacity)
	assert.Equal(t, beamformer.DefaultDirection, cfg.Direction)
}

func TestFlags_Unparsed(t *testing.T) {
	f := RegisterFlags(flag.NewFlagSet("test", flag.ContinueOnError))
	_, err := f.Profile()
	require.Error(t, err)
}

func TestFlags_MissingProfile(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-profile", filepath.Join(t.TempDir(), "none.yaml")}))

	_, err := f.Profile()
	require.ErrorIs(t, err, os.ErrNotExist)
}

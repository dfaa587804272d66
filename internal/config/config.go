package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
)

const (
	WindowWidth  = 1280
	WindowHeight = 720

	// Scene
	GridSize       = 40.0
	GridSegments   = 100
	GridDrawStride = 2
	StarCount      = 1000
	StarSpread     = 200.0
	BodyRadius     = 0.4

	// Camera
	CameraFovDeg    = 60.0
	CameraNear      = 0.1
	CameraFar       = 1000.0
	CameraStartX    = 0.0
	CameraStartY    = 6.0
	CameraStartZ    = 18.0
	CameraMinDist   = 4.0
	CameraMaxDist   = 80.0
	DragSensitivity = 0.005
	ZoomStep        = 1.1

	// Audio
	SampleRate    = 44100
	StrainRing    = 8192
	ChirpBaseFreq = 55.0
	ChirpMaxFreq  = 880.0
)

// Config holds the live-tunable simulation parameters.
type Config struct {
	OrbitSpeedFactor   float64 `json:"orbit_speed_factor"`
	WaveSpeed          float64 `json:"wave_speed"`
	EmitInterval       float64 `json:"emit_interval"`
	WaveAmplitude      float64 `json:"wave_amplitude"`
	OrbitRadius        float64 `json:"orbit_radius"`
	MergeDuration      float64 `json:"merge_duration"`
	MaxActiveWaves     int     `json:"max_active_waves"`
	WaveOffsetDistance float64 `json:"wave_offset_distance"`
}

// Range is an inclusive bound for a tunable parameter.
type Range struct {
	Min, Max float64
}

func (r Range) clamp(v float64) float64 {
	return math.Min(math.Max(v, r.Min), r.Max)
}

// Fraction maps v into [0,1] across the range.
func (r Range) Fraction(v float64) float64 {
	if r.Max == r.Min {
		return 0
	}
	return (r.clamp(v) - r.Min) / (r.Max - r.Min)
}

// Lerp maps a fraction in [0,1] back into the range.
func (r Range) Lerp(f float64) float64 {
	return r.clamp(r.Min + f*(r.Max-r.Min))
}

var (
	OrbitSpeedRange   = Range{0.1, 2.0}
	WaveSpeedRange    = Range{1, 10}
	EmitIntervalRange = Range{0.05, 1.0}
	AmplitudeRange    = Range{0.1, 1.0}

	OrbitRadiusRange   = Range{0.1, 20}
	MergeDurationRange = Range{0.1, 30}
	MaxWavesRange      = Range{1, 1000}
	OffsetRange        = Range{0, 5}
)

// Default returns the stock parameter set.
func Default() Config {
	return Config{
		OrbitSpeedFactor:   0.8,
		WaveSpeed:          5,
		EmitInterval:       0.25,
		WaveAmplitude:      0.3,
		OrbitRadius:        2,
		MergeDuration:      2,
		MaxActiveWaves:     100,
		WaveOffsetDistance: 0.5,
	}
}

// Clamped returns a copy with every field forced into its range.
// Non-finite values fall back to the default.
func (c Config) Clamped() Config {
	d := Default()
	fix := func(v, def float64, r Range) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = def
		}
		return r.clamp(v)
	}
	return Config{
		OrbitSpeedFactor:   fix(c.OrbitSpeedFactor, d.OrbitSpeedFactor, OrbitSpeedRange),
		WaveSpeed:          fix(c.WaveSpeed, d.WaveSpeed, WaveSpeedRange),
		EmitInterval:       fix(c.EmitInterval, d.EmitInterval, EmitIntervalRange),
		WaveAmplitude:      fix(c.WaveAmplitude, d.WaveAmplitude, AmplitudeRange),
		OrbitRadius:        fix(c.OrbitRadius, d.OrbitRadius, OrbitRadiusRange),
		MergeDuration:      fix(c.MergeDuration, d.MergeDuration, MergeDurationRange),
		MaxActiveWaves:     int(MaxWavesRange.clamp(float64(c.MaxActiveWaves))),
		WaveOffsetDistance: fix(c.WaveOffsetDistance, d.WaveOffsetDistance, OffsetRange),
	}
}

// LogValue logs the parameters as a group keyed like the preset file.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("orbit_speed_factor", c.OrbitSpeedFactor),
		slog.Float64("wave_speed", c.WaveSpeed),
		slog.Float64("emit_interval", c.EmitInterval),
		slog.Float64("wave_amplitude", c.WaveAmplitude),
		slog.Float64("orbit_radius", c.OrbitRadius),
		slog.Float64("merge_duration", c.MergeDuration),
		slog.Int("max_active_waves", c.MaxActiveWaves),
		slog.Float64("wave_offset_distance", c.WaveOffsetDistance),
	)
}

// LoadPreset reads a JSON preset on top of the defaults. Fields missing
// from the file keep their default value.
func LoadPreset(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read preset: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse preset %s: %w", path, err)
	}
	return cfg.Clamped(), nil
}

// SavePreset writes cfg as indented JSON.
func SavePreset(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	return nil
}

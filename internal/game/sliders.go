package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/iburimskiy/gw-visualization/internal/config"
)

const (
	sliderX       = 20
	sliderY       = 40
	sliderWidth   = 200
	sliderHeight  = 10
	sliderSpacing = 34
	knobRadius    = 7
)

// slider edits one Config field across its documented range.
type slider struct {
	label string
	rng   config.Range
	get   func(config.Config) float64
	set   func(*config.Config, float64)

	x, y     int
	dragging bool
}

func newSliders() []*slider {
	s := []*slider{
		{
			label: "Orbit speed",
			rng:   config.OrbitSpeedRange,
			get:   func(c config.Config) float64 { return c.OrbitSpeedFactor },
			set:   func(c *config.Config, v float64) { c.OrbitSpeedFactor = v },
		},
		{
			label: "Wave speed",
			rng:   config.WaveSpeedRange,
			get:   func(c config.Config) float64 { return c.WaveSpeed },
			set:   func(c *config.Config, v float64) { c.WaveSpeed = v },
		},
		{
			label: "Emit interval",
			rng:   config.EmitIntervalRange,
			get:   func(c config.Config) float64 { return c.EmitInterval },
			set:   func(c *config.Config, v float64) { c.EmitInterval = v },
		},
		{
			label: "Amplitude",
			rng:   config.AmplitudeRange,
			get:   func(c config.Config) float64 { return c.WaveAmplitude },
			set:   func(c *config.Config, v float64) { c.WaveAmplitude = v },
		},
	}
	for i, sl := range s {
		sl.x = sliderX
		sl.y = sliderY + i*sliderSpacing
	}
	return s
}

func (s *slider) hit(mx, my int) bool {
	return mx >= s.x-knobRadius && mx <= s.x+sliderWidth+knobRadius &&
		my >= s.y-knobRadius && my <= s.y+sliderHeight+knobRadius
}

func (s *slider) valueAt(mx int) float64 {
	return s.rng.Lerp(clamp01(float64(mx-s.x) / sliderWidth))
}

// apply writes the value under the cursor into cfg.
func (s *slider) apply(cfg config.Config, mx int) config.Config {
	s.set(&cfg, s.valueAt(mx))
	return cfg
}

func (s *slider) draw(screen *ebiten.Image, cfg config.Config) {
	v := s.get(cfg)
	frac := s.rng.Fraction(v)

	trackColor := color.RGBA{R: 40, G: 50, B: 70, A: 220}
	fillColor := color.RGBA{R: 0, G: 200, B: 220, A: 220}
	knobColor := color.RGBA{R: 220, G: 240, B: 255, A: 255}
	if s.dragging {
		knobColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}

	vector.DrawFilledRect(screen, float32(s.x), float32(s.y), sliderWidth, sliderHeight, trackColor, false)
	vector.DrawFilledRect(screen, float32(s.x), float32(s.y), float32(frac*sliderWidth), sliderHeight, fillColor, false)
	vector.StrokeRect(screen, float32(s.x), float32(s.y), sliderWidth, sliderHeight, 1, color.RGBA{R: 90, G: 110, B: 140, A: 255}, false)
	vector.DrawFilledCircle(screen, float32(float64(s.x)+frac*sliderWidth), float32(s.y+sliderHeight/2), knobRadius, knobColor, true)

	label := fmt.Sprintf("%s: %.2f", s.label, v)
	text.Draw(screen, label, basicfont.Face7x13, s.x, s.y-4, color.White)
}

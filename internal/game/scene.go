package game

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/gw-visualization/internal/config"
	"github.com/iburimskiy/gw-visualization/internal/sim"
)

var (
	wireColor  = color.RGBA{R: 0, G: 255, B: 255, A: 102}
	starColor  = color.RGBA{R: 255, G: 255, B: 255, A: 200}
	bodyColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	traceColor = color.RGBA{R: 255, G: 180, B: 80, A: 220}
)

// screenPoint is a projected grid sample.
type screenPoint struct {
	x, y float32
	ok   bool
}

func newStarField(n int, spread float64, seed uint64) []mgl64.Vec3 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	stars := make([]mgl64.Vec3, n)
	for i := range stars {
		stars[i] = mgl64.Vec3{
			(rng.Float64() - 0.5) * spread,
			(rng.Float64() - 0.5) * spread,
			(rng.Float64() - 0.5) * spread,
		}
	}
	return stars
}

func (g *Game) drawStars(screen *ebiten.Image) {
	for _, s := range g.stars {
		x, y, _, ok := g.cam.project(s)
		if !ok {
			continue
		}
		vector.DrawFilledRect(screen, float32(x), float32(y), 1, 1, starColor, false)
	}
}

// drawGrid projects every displaced sample once, then strokes the lattice
// rows and columns between neighbours.
func (g *Game) drawGrid(screen *ebiten.Image) {
	heights := g.frame.Heights
	if len(heights) != g.grid.Len() {
		return
	}
	if cap(g.projected) < g.grid.Len() {
		g.projected = make([]screenPoint, g.grid.Len())
	}
	g.projected = g.projected[:g.grid.Len()]

	for i := range g.projected {
		x, z := g.grid.At(i)
		sx, sy, _, ok := g.cam.project(mgl64.Vec3{x, heights[i], z})
		g.projected[i] = screenPoint{x: float32(sx), y: float32(sy), ok: ok}
	}

	cols := g.grid.Columns()
	if cols == 0 {
		return
	}
	rows := g.grid.Len() / cols
	stride := config.GridDrawStride

	for r := 0; r < rows; r += stride {
		for c := 0; c+stride < cols; c += stride {
			g.segment(screen, r*cols+c, r*cols+c+stride)
		}
	}
	for c := 0; c < cols; c += stride {
		for r := 0; r+stride < rows; r += stride {
			g.segment(screen, r*cols+c, (r+stride)*cols+c)
		}
	}
}

func (g *Game) segment(screen *ebiten.Image, a, b int) {
	pa, pb := g.projected[a], g.projected[b]
	if !pa.ok || !pb.ok {
		return
	}
	clr := wireColor
	if g.heatMap && g.frame.Colors != nil {
		ca, cb := g.frame.Colors[a], g.frame.Colors[b]
		mid := sim.Color{R: (ca.R + cb.R) / 2, G: (ca.G + cb.G) / 2, B: (ca.B + cb.B) / 2}
		clr = toRGBA(mid, wireColor.A)
	}
	vector.StrokeLine(screen, pa.x, pa.y, pb.x, pb.y, 1, clr, false)
}

// drawBodies draws both spheres with a glow pulsing at each body's own phase.
func (g *Game) drawBodies(screen *ebiten.Image) {
	bodies := g.state.Bodies()
	for i, b := range bodies {
		x, y, depth, ok := g.cam.project(b.Position)
		if !ok {
			continue
		}
		r := g.cam.pixelRadius(config.BodyRadius, depth)
		pulse := 0.5 + 0.5*math.Sin(g.elapsed*4+b.PulseOffset)

		hue := 190 + 40*float64(i) + 30*pulse
		cr, cg, cb := hsvToRgb(hue, 0.6, 1)
		glow := color.RGBA{R: cr, G: cg, B: cb, A: uint8(60 + 80*pulse)}

		vector.DrawFilledCircle(screen, float32(x), float32(y), float32(r*(1.8+0.4*pulse)), glow, true)
		vector.DrawFilledCircle(screen, float32(x), float32(y), float32(r), bodyColor, true)
	}
}

// drawStrain plots the most recent chirp samples along the bottom edge.
func (g *Game) drawStrain(screen *ebiten.Image) {
	if g.chirp == nil {
		return
	}
	const n = 1024
	samples := g.chirp.snapshot(n)
	if len(samples) < 2 {
		return
	}

	w, h := float64(g.width), float64(g.height)
	baseY := h - 40
	step := (w - 40) / float64(len(samples)-1)

	prevX, prevY := float32(20), float32(baseY-samples[0][0]*30)
	for i := 1; i < len(samples); i++ {
		x := float32(20 + float64(i)*step)
		y := float32(baseY - samples[i][0]*30)
		vector.StrokeLine(screen, prevX, prevY, x, y, 1, traceColor, false)
		prevX, prevY = x, y
	}
}

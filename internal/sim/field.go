package sim

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Grid is the fixed lattice of (x,z) sample coordinates the field is
// evaluated over. It is never mutated after construction.
type Grid struct {
	xs, zs  []float64
	columns int
}

// NewGrid lays out a size×size plane with segments subdivisions per side,
// row-major with z ascending, matching a plane geometry rotated flat.
func NewGrid(size float64, segments int) *Grid {
	if segments < 1 {
		segments = 1
	}
	cols := segments + 1
	step := size / float64(segments)
	half := size / 2

	g := &Grid{
		xs:      make([]float64, 0, cols*cols),
		zs:      make([]float64, 0, cols*cols),
		columns: cols,
	}
	for iz := 0; iz < cols; iz++ {
		z := float64(iz)*step - half
		for ix := 0; ix < cols; ix++ {
			g.xs = append(g.xs, float64(ix)*step-half)
			g.zs = append(g.zs, z)
		}
	}
	return g
}

// ErrGridMismatch is returned when x and z coordinate slices differ in length.
var ErrGridMismatch = errors.New("sample coordinate lengths differ")

// NewGridFromCoords wraps coordinates supplied by a renderer. The slices are
// copied.
func NewGridFromCoords(xs, zs []float64) (*Grid, error) {
	if len(xs) != len(zs) {
		return nil, fmt.Errorf("%w: %d x, %d z", ErrGridMismatch, len(xs), len(zs))
	}
	return &Grid{
		xs: append([]float64(nil), xs...),
		zs: append([]float64(nil), zs...),
	}, nil
}

// Len is the number of samples.
func (g *Grid) Len() int { return len(g.xs) }

// At returns the base coordinate of sample i.
func (g *Grid) At(i int) (x, z float64) { return g.xs[i], g.zs[i] }

// Columns is the row width for lattices built by NewGrid, 0 otherwise.
func (g *Grid) Columns() int { return g.columns }

// Color is a normalized RGB triple.
type Color struct {
	R, G, B float64
}

// HeatColor maps a displacement to the red/cyan heat map.
func HeatColor(height float64) Color {
	intensity := math.Min(math.Abs(height)*2, 1)
	return Color{R: intensity, G: 1 - intensity, B: 1}
}

// HeightAt sums the contribution of every ripple at (x,z) and time t.
// Each ripple is a Gaussian-enveloped sine centred on its expanding front.
func HeightAt(x, z float64, ripples []Ripple, t, waveSpeed, amplitude float64) float64 {
	var y float64
	for i := range ripples {
		w := &ripples[i]
		dist := math.Hypot(x-w.Position.X(), z-w.Position.Z())
		age := t - w.Birth
		if age < 0 {
			age = 0
		}
		d := dist - age*waveSpeed
		y += amplitude * math.Exp(-0.5*d*d) * math.Sin(d)
	}
	return y
}

// field holds the output buffers reused across ticks.
type field struct {
	heights []float64
	colors  []Color
	heatMap bool
	workers int
}

func newField(n int, heatMap bool, workers int) field {
	f := field{
		heights: make([]float64, n),
		heatMap: heatMap,
		workers: workers,
	}
	if heatMap {
		f.colors = make([]Color, n)
	}
	return f
}

// evaluate recomputes every sample. ripples must not change until it returns.
func (f *field) evaluate(g *Grid, ripples []Ripple, t, waveSpeed, amplitude float64) {
	n := g.Len()
	band := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			h := HeightAt(g.xs[i], g.zs[i], ripples, t, waveSpeed, amplitude)
			f.heights[i] = h
			if f.heatMap {
				f.colors[i] = HeatColor(h)
			}
		}
	}

	if f.workers <= 1 || n < f.workers {
		band(0, n)
		return
	}

	// One band per worker; bands never fail, so Wait only joins.
	var eg errgroup.Group
	chunk := (n + f.workers - 1) / f.workers
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		eg.Go(func() error {
			band(lo, hi)
			return nil
		})
	}
	eg.Wait()
}

// Command gw-term draws the binary merger as a top-down heat map in the terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/iburimskiy/gw-visualization/internal/config"
	"github.com/iburimskiy/gw-visualization/internal/sim"
)

const (
	frameInterval = 16 * time.Millisecond // ~60 FPS
	gridSegments  = 80
	waveSpeedStep = 0.5
)

var (
	presetFlag  = flag.String("preset", "", "JSON preset with simulation parameters")
	logFlag     = flag.String("log", "", "write logs to this file")
	workersFlag = flag.Int("workers", 1, "goroutines used to evaluate the distortion field")
)

type term struct {
	screen tcell.Screen
	grid   *sim.Grid
	state  *sim.State
	frame  sim.Frame
	start  time.Time
	logger *slog.Logger

	width, height int
}

func newTerm(cfg config.Config, logger *slog.Logger) (*term, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("new screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}

	grid := sim.NewGrid(config.GridSize, gridSegments)
	t := &term{
		screen: screen,
		grid:   grid,
		state:  sim.New(cfg, grid, sim.WithHeatMap(true), sim.WithWorkers(*workersFlag), sim.WithLogger(logger)),
		start:  time.Now(),
		logger: logger,
	}
	t.width, t.height = screen.Size()
	return t, nil
}

// handleInput reports false when the user asked to quit.
func (t *term) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case 'm':
			if t.state.TriggerMerge() {
				t.logger.Info("merge armed")
			}
		case '+', '=':
			t.adjustWaveSpeed(waveSpeedStep)
		case '-':
			t.adjustWaveSpeed(-waveSpeedStep)
		}

	case *tcell.EventResize:
		t.width, t.height = t.screen.Size()
		t.screen.Sync()
	}
	return true
}

func (t *term) adjustWaveSpeed(delta float64) {
	cfg := t.state.Config()
	cfg.WaveSpeed += delta
	t.state.UpdateConfig(cfg)
}

// sampleAt maps a terminal cell to the nearest grid sample.
func (t *term) sampleAt(cx, cy, rows int) int {
	cols := t.grid.Columns()
	ix := int(math.Round(float64(cx) / float64(max(t.width-1, 1)) * float64(cols-1)))
	iz := int(math.Round(float64(cy) / float64(max(rows-1, 1)) * float64(cols-1)))
	return iz*cols + ix
}

// cellOf maps a world position to a terminal cell.
func (t *term) cellOf(x, z float64, rows int) (int, int) {
	half := config.GridSize / 2
	cx := int(math.Round((x + half) / config.GridSize * float64(t.width-1)))
	cy := int(math.Round((z + half) / config.GridSize * float64(rows-1)))
	return cx, cy
}

func (t *term) draw() {
	t.screen.Clear()
	rows := t.height - 1
	if rows < 1 || t.width < 1 {
		t.screen.Show()
		return
	}

	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < t.width; cx++ {
			i := t.sampleAt(cx, cy, rows)
			c := t.frame.Colors[i]
			shade := 0.2 + 0.8*math.Min(math.Abs(t.frame.Heights[i])*2, 1)
			bg := tcell.NewRGBColor(int32(c.R*255*shade), int32(c.G*255*shade), int32(c.B*255*shade))
			t.screen.SetContent(cx, cy, ' ', nil, tcell.StyleDefault.Background(bg))
		}
	}

	bodyStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	for _, p := range [...][2]float64{{t.frame.Body1.X(), t.frame.Body1.Z()}, {t.frame.Body2.X(), t.frame.Body2.Z()}} {
		cx, cy := t.cellOf(p[0], p[1], rows)
		t.screen.SetContent(cx, cy, '●', nil, bodyStyle)
	}

	status := fmt.Sprintf(" %s  t=%.1fs  ripples=%d  wave speed=%.1f  m: merge  +/-: speed  q: quit",
		t.frame.Phase, t.frame.Time, t.frame.Ripples, t.state.Config().WaveSpeed)
	statusStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	for i, r := range []rune(status) {
		if i >= t.width {
			break
		}
		t.screen.SetContent(i, rows, r, nil, statusStyle)
	}
	t.screen.Show()
}

// forwardEvents feeds polled events into out until poll returns nil or done
// is closed.
func forwardEvents(poll func() tcell.Event, out chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := poll()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-done:
			return
		}
	}
}

func (t *term) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go forwardEvents(t.screen.PollEvent, eventChan, done)

	for {
		select {
		case ev := <-eventChan:
			if !t.handleInput(ev) {
				return
			}

		case <-ticker.C:
			t.frame = t.state.Advance(time.Since(t.start).Seconds())
			if t.frame.Transition == sim.TransitionMerged {
				t.logger.Info("merged", "t", t.frame.Time)
			}
			t.draw()
		}
	}
}

func main() {
	flag.Parse()
	if err := runMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMain() error {
	var out io.Writer = io.Discard
	if *logFlag != "" {
		f, err := os.Create(*logFlag)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, nil))

	cfg := config.Default()
	if *presetFlag != "" {
		loaded, err := config.LoadPreset(*presetFlag)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	t, err := newTerm(cfg, logger)
	if err != nil {
		return err
	}
	// Fini makes PollEvent return nil, which ends the forwarder.
	defer t.screen.Fini()

	t.frame = t.state.Advance(0)
	t.run()
	return nil
}

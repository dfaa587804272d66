package game

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/iburimskiy/gw-visualization/internal/config"
	"github.com/iburimskiy/gw-visualization/internal/sim"
)

var errNoAudio = errors.New("audio disabled, nothing to export")

// Options configures a Game.
type Options struct {
	Config  config.Config
	HeatMap bool
	Audio   bool
	Workers int
	Seed    uint64
	Logger  *slog.Logger
}

// Game drives the simulation once per ebiten tick and paints the result.
// It owns the simulation clock.
type Game struct {
	opts   Options
	logger *slog.Logger

	// simulation
	grid     *sim.Grid
	state    *sim.State
	frame    sim.Frame
	elapsed  float64
	mergedAt float64

	// view
	cam       *camera
	stars     []mgl64.Vec3
	projected []screenPoint
	heatMap   bool
	width     int
	height    int

	// input
	sliders   []*slider
	orbiting  bool
	lastMouse [2]int

	// audio
	chirp   *chirp
	ctrl    *beep.Ctrl
	audioOn bool

	// dialogs
	dialogs    chan dialogResult
	dialogOpen bool

	// state
	paused  bool
	status  string
	lastErr error
}

// New builds the scene and starts a fresh session at t=0.
func New(opts Options) *Game {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	g := &Game{
		opts:    opts,
		logger:  opts.Logger,
		grid:    sim.NewGrid(config.GridSize, config.GridSegments),
		cam:     newCamera(config.WindowWidth, config.WindowHeight),
		stars:   newStarField(config.StarCount, config.StarSpread, opts.Seed),
		heatMap: opts.HeatMap,
		width:   config.WindowWidth,
		height:  config.WindowHeight,
		sliders: newSliders(),
		dialogs: make(chan dialogResult, 1),
	}
	g.reset(opts.Config)

	if opts.Audio {
		if err := g.initAudio(); err != nil {
			// Non-fatal, the visualization runs without sound
			g.logger.Warn("audio init failed", "err", err)
		}
	}
	return g
}

func (g *Game) reset(cfg config.Config) {
	g.state = sim.New(cfg, g.grid,
		sim.WithSeed(g.opts.Seed),
		sim.WithHeatMap(true),
		sim.WithWorkers(g.opts.Workers),
		sim.WithLogger(g.logger),
	)
	g.elapsed = 0
	g.mergedAt = 0
	g.frame = g.state.Advance(0)
	g.status = ""
	g.logger.Info("session started", "config", g.state.Config())
}

func (g *Game) initAudio() error {
	rate := beep.SampleRate(config.SampleRate)
	if err := speaker.Init(rate, rate.N(time.Second/20)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}
	g.chirp = newChirp(rate, config.StrainRing)
	g.ctrl = &beep.Ctrl{Streamer: g.chirp, Paused: false}
	speaker.Play(g.ctrl)
	g.audioOn = true
	return nil
}

// Close stops audio playback.
func (g *Game) Close() {
	if !g.audioOn {
		return
	}
	speaker.Lock()
	g.ctrl.Paused = true
	speaker.Unlock()
	speaker.Clear()
}

func (g *Game) Update() error {
	g.drainDialogs()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	g.handleKeys()
	g.handleMouse()
	g.cam.update()

	if !g.paused {
		tps := ebiten.TPS()
		if tps <= 0 {
			tps = ebiten.DefaultTPS
		}
		g.elapsed += 1.0 / float64(tps)
	}
	g.tick()
	return nil
}

// tick advances the simulation to the driver's clock.
func (g *Game) tick() {
	g.frame = g.state.Advance(g.elapsed)

	switch g.frame.Transition {
	case sim.TransitionMergeBegan:
		g.logger.Info("merge began", "t", g.frame.Time)
	case sim.TransitionMerged:
		g.mergedAt = g.frame.Time
		g.logger.Info("merged", "t", g.frame.Time, "ripples", g.frame.Ripples)
	}

	if g.chirp != nil {
		freq, amp := chirpTone(g.frame, g.state.Config(), g.frame.Time-g.mergedAt)
		if g.paused {
			amp = 0
		}
		g.chirp.set(freq, amp)
	}
}

func (g *Game) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		if g.state.TriggerMerge() {
			g.logger.Info("merge armed", "t", g.elapsed)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.paused = !g.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.reset(g.state.Config())
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		g.heatMap = !g.heatMap
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		g.openDialog(func() { loadPresetDialog(g.dialogs) })
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		cfg := g.state.Config()
		g.openDialog(func() { savePresetDialog(g.dialogs, cfg) })
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		if g.chirp == nil {
			g.lastErr = errNoAudio
			return
		}
		samples := g.chirp.snapshot(config.StrainRing)
		g.openDialog(func() { exportWAVDialog(g.dialogs, samples, g.chirp.rate) })
	}
}

func (g *Game) openDialog(open func()) {
	if g.dialogOpen {
		return
	}
	g.dialogOpen = true
	open()
}

func (g *Game) drainDialogs() {
	select {
	case res := <-g.dialogs:
		g.dialogOpen = false
		if res.err != nil {
			g.lastErr = res.err
			g.logger.Error("dialog failed", "dialog", res.kind, "err", res.err)
			return
		}
		if res.path == "" {
			return
		}
		g.lastErr = nil
		if res.kind == dialogLoadPreset {
			g.state.UpdateConfig(res.cfg)
		}
		g.status = fmt.Sprintf("%s: %s", res.kind, res.path)
		g.logger.Info("dialog done", "dialog", res.kind, "path", res.path)
	default:
	}
}

func (g *Game) handleMouse() {
	mx, my := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		grabbed := false
		for _, s := range g.sliders {
			if s.hit(mx, my) {
				s.dragging = true
				grabbed = true
				break
			}
		}
		g.orbiting = !grabbed
		g.lastMouse = [2]int{mx, my}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		for _, s := range g.sliders {
			s.dragging = false
		}
		g.orbiting = false
	}

	for _, s := range g.sliders {
		if s.dragging {
			g.state.UpdateConfig(s.apply(g.state.Config(), mx))
		}
	}
	if g.orbiting {
		g.cam.rotate(float64(mx-g.lastMouse[0]), float64(my-g.lastMouse[1]))
		g.lastMouse = [2]int{mx, my}
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		g.cam.zoom(wy)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	g.drawStars(screen)
	g.drawGrid(screen)
	g.drawBodies(screen)
	g.drawStrain(screen)

	cfg := g.state.Config()
	for _, s := range g.sliders {
		s.draw(screen, cfg)
	}

	status := fmt.Sprintf("%s  t=%s  %s", g.frame.Phase, formatDuration(seconds(g.frame.Time)), g.progressLabel())
	status += fmt.Sprintf("  ripples=%d/%d", g.frame.Ripples, cfg.MaxActiveWaves)
	if g.paused {
		status += "  [paused]"
	}
	if g.status != "" {
		status += " | " + g.status
	}
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 12, 12)
	ebitenutil.DebugPrintAt(screen, "M: merge  Space: pause  R: reset  H: heat map  L/S: load/save preset  E: export wav  Esc/Q: quit", 12, g.height-20)
}

func (g *Game) progressLabel() string {
	if g.frame.Phase != sim.PhaseMerging {
		return ""
	}
	return fmt.Sprintf("%3.0f%%", g.frame.Progress*100)
}

// Layout follows the window so resizing keeps the projection aspect.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	g.cam.resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

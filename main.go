package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"runtime"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/gw-visualization/internal/config"
	"github.com/iburimskiy/gw-visualization/internal/game"
)

var (
	presetFlag  = flag.String("preset", "", "JSON preset with simulation parameters")
	audioFlag   = flag.Bool("audio", true, "play the chirp sonification")
	heatMapFlag = flag.Bool("heatmap", false, "color the grid by displacement")
	workersFlag = flag.Int("workers", runtime.NumCPU(), "goroutines used to evaluate the distortion field")
	seedFlag    = flag.Uint64("seed", 1, "seed for star field and body pulse phases")
	tpsFlag     = flag.Int("tps", ebiten.DefaultTPS, "simulation ticks per second")
	debugFlag   = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *presetFlag != "" {
		loaded, err := config.LoadPreset(*presetFlag)
		if err != nil {
			logger.Error("load preset", "path", *presetFlag, "err", err)
			os.Exit(1)
		}
		cfg = loaded
		logger.Info("preset loaded", "path", *presetFlag)
	}

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowTitle("Binary Merger - M: merge, drag: orbit, wheel: zoom, Esc/Q: quit")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(*tpsFlag)

	g := game.New(game.Options{
		Config:  cfg,
		HeatMap: *heatMapFlag,
		Audio:   *audioFlag,
		Workers: *workersFlag,
		Seed:    *seedFlag,
		Logger:  logger,
	})

	err := ebiten.RunGame(g)
	g.Close()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("run game", "err", err)
		os.Exit(1)
	}
}

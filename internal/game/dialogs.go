package game

import (
	"errors"
	"fmt"
	"os"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/gw-visualization/internal/config"
)

type dialogKind int

const (
	dialogLoadPreset dialogKind = iota
	dialogSavePreset
	dialogExportWAV
)

func (k dialogKind) String() string {
	switch k {
	case dialogLoadPreset:
		return "load preset"
	case dialogSavePreset:
		return "save preset"
	case dialogExportWAV:
		return "export wav"
	default:
		return "dialog"
	}
}

// dialogResult is sent back to the game loop when a file dialog finishes.
// An empty path with a nil error means the user cancelled.
type dialogResult struct {
	kind dialogKind
	path string
	cfg  config.Config
	err  error
}

var presetFilter = zenity.FileFilters{{
	Name:     "Preset",
	Patterns: []string{"*.json"},
}}

// Dialogs block, so they run off the game loop and report through results.

func loadPresetDialog(results chan<- dialogResult) {
	go func() {
		res := dialogResult{kind: dialogLoadPreset}
		path, err := zenity.SelectFile(zenity.Title("Load Preset"), presetFilter)
		if err != nil {
			res.err = cancelled(err)
			results <- res
			return
		}
		res.path = path
		res.cfg, res.err = config.LoadPreset(path)
		results <- res
	}()
}

func savePresetDialog(results chan<- dialogResult, cfg config.Config) {
	go func() {
		res := dialogResult{kind: dialogSavePreset, cfg: cfg}
		path, err := zenity.SelectFileSave(
			zenity.Title("Save Preset"),
			zenity.Filename("preset.json"),
			zenity.ConfirmOverwrite(),
			presetFilter,
		)
		if err != nil {
			res.err = cancelled(err)
			results <- res
			return
		}
		res.path = path
		res.err = config.SavePreset(path, cfg)
		results <- res
	}()
}

func exportWAVDialog(results chan<- dialogResult, samples [][2]float64, rate beep.SampleRate) {
	go func() {
		res := dialogResult{kind: dialogExportWAV}
		path, err := zenity.SelectFileSave(
			zenity.Title("Export Chirp"),
			zenity.Filename("chirp.wav"),
			zenity.ConfirmOverwrite(),
			zenity.FileFilters{{Name: "Audio", Patterns: []string{"*.wav"}}},
		)
		if err != nil {
			res.err = cancelled(err)
			results <- res
			return
		}
		res.path = path
		res.err = exportWAV(path, samples, rate)
		results <- res
	}()
}

func cancelled(err error) error {
	if errors.Is(err, zenity.ErrCanceled) {
		return nil
	}
	return err
}

// exportWAV writes stereo 16-bit PCM.
func exportWAV(path string, samples [][2]float64, rate beep.SampleRate) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, samplesStreamer(samples), format); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	return f.Close()
}

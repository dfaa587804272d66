package game

import (
	"math"
	"testing"

	"github.com/faiface/beep"

	"github.com/iburimskiy/gw-visualization/internal/config"
	"github.com/iburimskiy/gw-visualization/internal/sim"
)

func TestChirpStreamInRange(t *testing.T) {
	c := newChirp(beep.SampleRate(44100), 256)
	c.set(440, 1)

	samples := make([][2]float64, 100)
	n, ok := c.Stream(samples)
	if !ok || n != 100 {
		t.Fatalf("Stream = (%d, %v), want (100, true)", n, ok)
	}
	for i := 0; i < n; i++ {
		if samples[i][0] < -1 || samples[i][0] > 1 {
			t.Errorf("sample %d out of range: %f", i, samples[i][0])
		}
		if samples[i][0] != samples[i][1] {
			t.Errorf("sample %d channels differ: %v", i, samples[i])
		}
	}
	if c.Err() != nil {
		t.Errorf("Err() = %v, want nil", c.Err())
	}
}

func TestChirpSilentAtZeroAmplitude(t *testing.T) {
	c := newChirp(beep.SampleRate(44100), 64)
	samples := make([][2]float64, 32)
	c.Stream(samples)
	for i, s := range samples {
		if s[0] != 0 {
			t.Fatalf("sample %d = %v, want silence", i, s[0])
		}
	}
}

func TestChirpSnapshotMostRecentLast(t *testing.T) {
	c := newChirp(beep.SampleRate(44100), 16)
	c.set(1000, 0.8)

	all := make([][2]float64, 0, 40)
	for i := 0; i < 4; i++ {
		chunk := make([][2]float64, 10)
		c.Stream(chunk)
		all = append(all, chunk...)
	}

	got := c.snapshot(5)
	want := all[len(all)-5:]
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("snapshot[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if n := len(c.snapshot(1000)); n != 16 {
		t.Errorf("oversized snapshot len = %d, want ring size 16", n)
	}
}

func TestChirpTone(t *testing.T) {
	cfg := config.Default()

	freq, amp := chirpTone(sim.Frame{Phase: sim.PhaseOrbiting}, cfg, 0)
	if math.Abs(freq-88) > 1e-9 {
		t.Errorf("orbiting freq = %v, want 88", freq)
	}
	if amp <= 0 {
		t.Errorf("orbiting amp = %v, want > 0", amp)
	}

	freq, _ = chirpTone(sim.Frame{Phase: sim.PhaseMerging, Progress: 1}, cfg, 0)
	if math.Abs(freq-440) > 1e-9 {
		t.Errorf("end of merge freq = %v, want 440", freq)
	}

	freq, early := chirpTone(sim.Frame{Phase: sim.PhaseMerged}, cfg, 0)
	_, late := chirpTone(sim.Frame{Phase: sim.PhaseMerged}, cfg, 3)
	if freq != config.ChirpMaxFreq {
		t.Errorf("ringdown freq = %v, want %v", freq, config.ChirpMaxFreq)
	}
	if late >= early {
		t.Errorf("ringdown amp did not decay: %v -> %v", early, late)
	}

	cfg.OrbitSpeedFactor = 0.1
	if freq, _ := chirpTone(sim.Frame{Phase: sim.PhaseOrbiting}, cfg, 0); freq != config.ChirpBaseFreq {
		t.Errorf("slow orbit freq = %v, want floor %v", freq, config.ChirpBaseFreq)
	}
}

func TestSamplesStreamer(t *testing.T) {
	data := [][2]float64{{0.1, 0.1}, {0.2, 0.2}, {0.3, 0.3}}
	s := samplesStreamer(data)

	buf := make([][2]float64, 2)
	if n, ok := s.Stream(buf); n != 2 || !ok {
		t.Fatalf("first Stream = (%d, %v), want (2, true)", n, ok)
	}
	if n, ok := s.Stream(buf); n != 1 || !ok || buf[0] != data[2] {
		t.Fatalf("second Stream = (%d, %v, %v), want (1, true, %v)", n, ok, buf[0], data[2])
	}
	if n, ok := s.Stream(buf); n != 0 || ok {
		t.Errorf("drained Stream = (%d, %v), want (0, false)", n, ok)
	}
}

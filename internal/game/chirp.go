package game

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/faiface/beep"

	"github.com/iburimskiy/gw-visualization/internal/config"
	"github.com/iburimskiy/gw-visualization/internal/sim"
)

const (
	chirpGlide    = 0.002 // per-sample smoothing toward the target tone
	ringdownDecay = 1.5
)

// chirp is a beep.Streamer whose pitch follows the binary's wave frequency:
// twice the orbital rate, rising as the merge accelerates, then ringing down.
// Everything it plays is recorded into a ring buffer so the HUD can draw the
// strain trace.
type chirp struct {
	rate beep.SampleRate

	targetFreq atomic.Uint64
	targetAmp  atomic.Uint64

	phase   float64
	curFreq float64
	curAmp  float64

	buffer    [][2]float64
	nextIndex int
	mu        sync.RWMutex
}

func newChirp(rate beep.SampleRate, ringSize int) *chirp {
	c := &chirp{
		rate:    rate,
		buffer:  make([][2]float64, ringSize),
		curFreq: config.ChirpBaseFreq,
	}
	c.set(config.ChirpBaseFreq, 0)
	return c
}

// set publishes the tone for the audio goroutine.
func (c *chirp) set(freq, amp float64) {
	c.targetFreq.Store(math.Float64bits(freq))
	c.targetAmp.Store(math.Float64bits(amp))
}

func (c *chirp) Stream(samples [][2]float64) (int, bool) {
	freq := math.Float64frombits(c.targetFreq.Load())
	amp := math.Float64frombits(c.targetAmp.Load())

	c.mu.Lock()
	for i := range samples {
		c.curFreq += (freq - c.curFreq) * chirpGlide
		c.curAmp += (amp - c.curAmp) * chirpGlide

		v := c.curAmp * math.Sin(2*math.Pi*c.phase)
		samples[i][0] = v
		samples[i][1] = v

		c.phase += c.curFreq / float64(c.rate)
		c.phase -= math.Floor(c.phase)

		c.buffer[c.nextIndex] = samples[i]
		c.nextIndex++
		if c.nextIndex >= len(c.buffer) {
			c.nextIndex = 0
		}
	}
	c.mu.Unlock()
	return len(samples), true
}

func (c *chirp) Err() error { return nil }

// snapshot copies the last n played chirp samples, oldest first. n is capped
// at the tap size.
func (c *chirp) snapshot(n int) [][2]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n > len(c.buffer) {
		n = len(c.buffer)
	}
	out := make([][2]float64, n)
	idx := c.nextIndex - n
	if idx < 0 {
		idx += len(c.buffer)
	}
	for i := range out {
		out[i] = c.buffer[idx]
		idx++
		if idx >= len(c.buffer) {
			idx = 0
		}
	}
	return out
}

// chirpTone maps the current frame to a pitch and loudness. sinceMerge is
// the time since the bodies coalesced and only matters once merged.
func chirpTone(f sim.Frame, cfg config.Config, sinceMerge float64) (freq, amp float64) {
	loudness := cfg.WaveAmplitude / config.AmplitudeRange.Max

	switch f.Phase {
	case sim.PhaseOrbiting:
		freq = config.ChirpBaseFreq * 2 * cfg.OrbitSpeedFactor
		amp = 0.15 * loudness
	case sim.PhaseMerging:
		freq = config.ChirpBaseFreq * 2 * cfg.OrbitSpeedFactor * (1 + 4*f.Progress)
		amp = (0.15 + 0.45*f.Progress) * loudness
	default:
		freq = config.ChirpMaxFreq
		amp = 0.6 * loudness * math.Exp(-ringdownDecay*sinceMerge)
	}
	return math.Min(math.Max(freq, config.ChirpBaseFreq), config.ChirpMaxFreq), amp
}

// samplesStreamer plays back a fixed slice once.
func samplesStreamer(data [][2]float64) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= len(data) {
			return 0, false
		}
		n := copy(samples, data[pos:])
		pos += n
		return n, true
	})
}

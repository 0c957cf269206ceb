// Package audio turns a recorded run into sound: every counted step becomes
// a short note pitched by the value in focus.
package audio

import (
	"io"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"

	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/storage"
)

const (
	SampleRate = beep.SampleRate(44100)

	DefaultNote   = 60 * time.Millisecond
	DefaultLowHz  = 196.0 // G3
	DefaultHighHz = 1568.0
)

// Options shape the rendering. Zero fields take defaults; a negative
// Volume renders silence.
type Options struct {
	SampleRate beep.SampleRate
	Note       time.Duration
	Volume     float64
	LowHz      float64
	HighHz     float64
}

func DefaultOptions() Options {
	return Options{
		SampleRate: SampleRate,
		Note:       DefaultNote,
		Volume:     0.5,
		LowHz:      DefaultLowHz,
		HighHz:     DefaultHighHz,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SampleRate <= 0 {
		o.SampleRate = d.SampleRate
	}
	if o.Note <= 0 {
		o.Note = d.Note
	}
	if o.Volume == 0 {
		o.Volume = d.Volume
	}
	if o.LowHz <= 0 {
		o.LowHz = d.LowHz
	}
	if o.HighHz <= o.LowHz {
		o.HighHz = o.LowHz * 8
	}
	return o
}

// Pitch maps value in [lo, hi] onto [loHz, hiHz] exponentially, so equal
// value gaps sound like equal intervals.
func Pitch(value, lo, hi int, loHz, hiHz float64) float64 {
	t := 0.5
	if hi > lo {
		t = float64(value-lo) / float64(hi-lo)
	}
	t = math.Max(0, math.Min(1, t))
	return loHz * math.Pow(hiHz/loHz, t)
}

// Render builds one note per counted frame. Frames without a focus rest
// for the same length.
func Render(frames []storage.FrameRecord, opts Options) beep.Streamer {
	opts = opts.withDefaults()
	lo, hi := valueRange(frames)
	n := opts.SampleRate.N(opts.Note)

	var notes []beep.Streamer
	for _, f := range frames {
		if f.Kind == engine.StepMark {
			continue
		}
		if f.Focus < 0 {
			notes = append(notes, beep.Silence(n))
			continue
		}
		freq := Pitch(f.Focus, lo, hi, opts.LowHz, opts.HighHz)
		notes = append(notes, newTone(freq, n, cutoff(f.Kind), opts.SampleRate))
	}
	return volume(beep.Seq(notes...), opts.Volume)
}

// WriteWAV renders frames as 16-bit stereo WAV.
func WriteWAV(w io.WriteSeeker, frames []storage.FrameRecord, opts Options) error {
	opts = opts.withDefaults()
	format := beep.Format{SampleRate: opts.SampleRate, NumChannels: 2, Precision: 2}
	return wav.Encode(w, Render(frames, opts), format)
}

func valueRange(frames []storage.FrameRecord) (int, int) {
	lo, hi := math.MaxInt, math.MinInt
	for _, f := range frames {
		for _, v := range f.Values {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// Writes sound brighter than reads.
func cutoff(kind engine.StepKind) float64 {
	switch kind {
	case engine.StepSwap, engine.StepShift, engine.StepPlace, engine.StepEmit:
		return 2400
	default:
		return 900
	}
}

// tone is a filtered triangle wave with a short fade at both ends.
type tone struct {
	freq   float64
	phase  float64
	cutoff float64
	state  float64
	pos    int
	total  int
	fade   int
	rate   beep.SampleRate
}

func newTone(freq float64, samples int, cutoff float64, rate beep.SampleRate) beep.Streamer {
	return &tone{
		freq:   freq,
		cutoff: cutoff,
		total:  samples,
		fade:   min(samples/4, rate.N(5*time.Millisecond)),
		rate:   rate,
	}
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	if t.pos >= t.total {
		return 0, false
	}
	dt := 1.0 / float64(t.rate)
	for i := range samples {
		if t.pos >= t.total {
			return i, true
		}
		var out float64
		out, t.state = lpf(triangle(t.phase), t.cutoff, dt, t.state)
		out *= t.gain()
		samples[i][0] = out
		samples[i][1] = out

		t.phase += t.freq * dt
		t.phase -= math.Floor(t.phase)
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

func (t *tone) gain() float64 {
	if t.fade == 0 {
		return 1
	}
	switch {
	case t.pos < t.fade:
		return float64(t.pos) / float64(t.fade)
	case t.total-t.pos < t.fade:
		return float64(t.total-t.pos) / float64(t.fade)
	default:
		return 1
	}
}

func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// lpf is a one-pole low pass filter.
func lpf(sample, cutoff, dt, state float64) (float64, float64) {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	out := state + alpha*(sample-state)
	return out, out
}

// math.Log2(0) is -Inf, so zero volume is handled as silent.
func volume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

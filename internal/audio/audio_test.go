package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/storage"
)

func sampleFrames() []storage.FrameRecord {
	values := []int{10, 40, 20}
	return []storage.FrameRecord{
		{Step: 0, Kind: engine.StepMark, Focus: -1, Values: values},
		{Step: 1, Kind: engine.StepCompare, Focus: 10, Values: values},
		{Step: 2, Kind: engine.StepSwap, Focus: 40, Values: values},
		{Step: 2, Kind: engine.StepMark, Focus: -1, Values: values},
		{Step: 3, Kind: engine.StepCompare, Focus: -1, Values: values},
	}
}

func drain(t *testing.T, s beep.Streamer) (n int, peak float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	for {
		got, ok := s.Stream(buf)
		for i := 0; i < got; i++ {
			peak = math.Max(peak, math.Abs(buf[i][0]))
		}
		n += got
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	return n, peak
}

func TestPitch(t *testing.T) {
	if got := Pitch(0, 0, 100, 200, 800); got != 200 {
		t.Errorf("low end: got %v", got)
	}
	if got := Pitch(100, 0, 100, 200, 800); math.Abs(got-800) > 1e-9 {
		t.Errorf("high end: got %v", got)
	}
	if got := Pitch(50, 0, 100, 200, 800); math.Abs(got-400) > 1e-9 {
		t.Errorf("midpoint should be the geometric mean, got %v", got)
	}
	if got := Pitch(500, 0, 100, 200, 800); math.Abs(got-800) > 1e-9 {
		t.Errorf("out of range should clamp, got %v", got)
	}
	if got := Pitch(7, 7, 7, 200, 800); math.Abs(got-400) > 1e-9 {
		t.Errorf("flat range should sit in the middle, got %v", got)
	}
}

func TestRender_OneNotePerCountedStep(t *testing.T) {
	opts := Options{SampleRate: 8000, Note: 10 * time.Millisecond}
	n, peak := drain(t, Render(sampleFrames(), opts))

	want := 3 * beep.SampleRate(8000).N(10*time.Millisecond)
	if n != want {
		t.Errorf("expected %d samples, got %d", want, n)
	}
	if peak == 0 || peak > 1 {
		t.Errorf("peak %v out of (0, 1]", peak)
	}
}

func TestRender_Silent(t *testing.T) {
	opts := Options{SampleRate: 8000, Note: 10 * time.Millisecond, Volume: -1}
	n, peak := drain(t, Render(sampleFrames(), opts))
	if n == 0 {
		t.Error("expected samples even when silent")
	}
	if peak != 0 {
		t.Errorf("expected silence, peak %v", peak)
	}
}

func TestRender_Empty(t *testing.T) {
	n, _ := drain(t, Render(nil, Options{}))
	if n != 0 {
		t.Errorf("expected no samples, got %d", n)
	}
}

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{SampleRate: 8000, Note: 20 * time.Millisecond}
	if err := WriteWAV(f, sampleFrames(), opts); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	s, format, err := wav.Decode(in)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	defer s.Close()
	if format.SampleRate != 8000 || format.NumChannels != 2 {
		t.Errorf("unexpected format %+v", format)
	}
	if want := 3 * beep.SampleRate(8000).N(20*time.Millisecond); s.Len() != want {
		t.Errorf("expected %d samples, got %d", want, s.Len())
	}
}

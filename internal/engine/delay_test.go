package engine

import (
	"context"
	"testing"
	"time"
)

func TestDelayProfiles(t *testing.T) {
	tests := []struct {
		name    string
		profile DelayProfile
		speed   int
		want    time.Duration
	}{
		{"sort slow", SortDelay, 1, 198 * time.Millisecond},
		{"sort mid", SortDelay, 50, 100 * time.Millisecond},
		{"sort floor", SortDelay, 100, 50 * time.Millisecond},
		{"scan mid", ScanDelay, 50, 200 * time.Millisecond},
		{"scan floor", ScanDelay, 100, 100 * time.Millisecond},
		{"descent mid", DescentDelay, 50, 250 * time.Millisecond},
		{"descent floor", DescentDelay, 100, 100 * time.Millisecond},
		{"clamped low", SortDelay, -10, 198 * time.Millisecond},
		{"clamped high", ScanDelay, 500, 100 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.Delay(tt.speed); got != tt.want {
				t.Errorf("Delay(%d) = %v, want %v", tt.speed, got, tt.want)
			}
		})
	}
}

func TestDelayMonotone(t *testing.T) {
	for _, p := range []DelayProfile{SortDelay, ScanDelay, DescentDelay} {
		prev := p.Delay(MinSpeed)
		for speed := MinSpeed + 1; speed <= MaxSpeed; speed++ {
			d := p.Delay(speed)
			if d > prev {
				t.Fatalf("%+v: delay increased at speed %d", p, speed)
			}
			if d < time.Duration(p.Floor)*time.Millisecond {
				t.Fatalf("%+v: delay below floor at speed %d", p, speed)
			}
			prev = d
		}
	}
}

func TestGateRelease(t *testing.T) {
	gate := NewGate(true)
	ctx := context.Background()

	gate.Release(2)
	for i := 0; i < 2; i++ {
		if err := gate.Wait(ctx, 0); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}

	blocked := make(chan error, 1)
	go func() { blocked <- gate.Wait(ctx, 0) }()

	select {
	case <-blocked:
		t.Fatal("closed gate let a wait through without credit")
	case <-time.After(20 * time.Millisecond):
	}

	gate.Open()
	select {
	case err := <-blocked:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("open did not release waiter")
	}
}

func TestGateWaitHonoursContext(t *testing.T) {
	gate := NewGate(true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := gate.Wait(ctx, 0); err == nil {
		t.Error("expected context error")
	}
}

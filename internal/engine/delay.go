package engine

import (
	"fmt"
	"time"
)

const (
	MinSpeed     = 1
	MaxSpeed     = 100
	DefaultSpeed = 50
)

// DelayProfile describes the pause after each step as
// max(Floor, Base - K*speed) milliseconds.
type DelayProfile struct {
	Floor int `yaml:"floor" json:"floor"`
	Base  int `yaml:"base" json:"base"`
	K     int `yaml:"k" json:"k"`
}

var (
	// SortDelay paces comparison sorts.
	SortDelay = DelayProfile{Floor: 50, Base: 200, K: 2}
	// ScanDelay paces linear search, graph traversal and BST insert.
	ScanDelay = DelayProfile{Floor: 100, Base: 300, K: 2}
	// DescentDelay paces binary search, BST search and tree traversals.
	DescentDelay = DelayProfile{Floor: 100, Base: 400, K: 3}
)

// Delay is non-increasing in speed and never drops below Floor.
func (p DelayProfile) Delay(speed int) time.Duration {
	speed = ClampSpeed(speed)
	ms := p.Base - p.K*speed
	if ms < p.Floor {
		ms = p.Floor
	}
	return time.Duration(ms) * time.Millisecond
}

func (p DelayProfile) Validate() error {
	if p.Floor < 0 || p.Base < 0 || p.K < 0 {
		return fmt.Errorf("%w: delay profile must be non-negative, got %+v", ErrInvalidInput, p)
	}
	return nil
}

func ValidateSpeed(speed int) error {
	if speed < MinSpeed || speed > MaxSpeed {
		return fmt.Errorf("%w: speed must be in [%d, %d], got %d", ErrInvalidInput, MinSpeed, MaxSpeed, speed)
	}
	return nil
}

func ClampSpeed(speed int) int {
	return max(MinSpeed, min(MaxSpeed, speed))
}

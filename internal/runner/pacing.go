package runner

import (
	"context"
	"time"
)

// Pacing rate-limits gateway calls between passes.
type Pacing struct {
	// PassDelay follows every regular pass.
	PassDelay time.Duration
	// AnomalyDelay follows a pass whose first gateway round was unusable.
	AnomalyDelay time.Duration
}

// DefaultPacing waits 2s after a regular pass and 5s after an anomaly.
func DefaultPacing() Pacing {
	return Pacing{PassDelay: 2 * time.Second, AnomalyDelay: 5 * time.Second}
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration)

// Sleep is the wall-clock Sleeper.
func Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

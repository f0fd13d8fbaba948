package player

import (
	"context"
	"time"
)

// DefaultSaveInterval is how often the persister flushes playback
// position while a chapter is playing.
const DefaultSaveInterval = 5 * time.Second

// Persister periodically saves the player's position. Saves happen only
// while a chapter is actually playing; paused and idle players generate
// no traffic.
type Persister struct {
	player   *Player
	interval time.Duration
}

// NewPersister creates a persister. A non-positive interval falls back
// to DefaultSaveInterval.
func NewPersister(p *Player, interval time.Duration) *Persister {
	if interval <= 0 {
		interval = DefaultSaveInterval
	}
	return &Persister{player: p, interval: interval}
}

// Run ticks until the context is canceled. A final save on shutdown is
// the caller's job via Player.Close.
func (p *Persister) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick performs a single save pass.
func (p *Persister) Tick(ctx context.Context) {
	p.player.SaveNow(ctx)
}

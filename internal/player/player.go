// Package player holds the in-memory model of the remote player's state.
package player

import (
	"sync"

	"github.com/vlcbridge/vlcbridge/internal/domain"
	"go.uber.org/zap"
)

// Player is a thread-safe container for the remote player's attributes.
// Each accessor is atomic with respect to concurrent readers and writers;
// no cross-attribute atomicity is provided, a reader may observe a new
// play state paired with an old current time.
type Player struct {
	logger *zap.Logger

	mu          sync.Mutex
	volume      int
	title       string
	state       domain.PlayState
	currentTime int
	totalTime   int
	source      string
}

// New creates a Player with zero/empty defaults and the Stopped state
func New(logger *zap.Logger) *Player {
	return &Player{
		logger: logger,
		state:  domain.StateStopped,
	}
}

// SetVolume updates the reported volume
func (p *Player) SetVolume(v int) {
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
}

// Volume returns the reported volume
func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetTitle updates the current media title
func (p *Player) SetTitle(t string) {
	p.mu.Lock()
	p.title = t
	p.mu.Unlock()
}

// Title returns the current media title
func (p *Player) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title
}

// SetState updates the playback state
func (p *Player) SetState(s domain.PlayState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	p.logger.Info("Play state changed", zap.String("state", string(s)))
}

// State returns the playback state
func (p *Player) State() domain.PlayState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetCurrentTime updates the elapsed time in seconds
func (p *Player) SetCurrentTime(t int) {
	p.mu.Lock()
	p.currentTime = t
	p.mu.Unlock()
}

// CurrentTime returns the elapsed time in seconds
func (p *Player) CurrentTime() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentTime
}

// SetTotalTime updates the media length in seconds
func (p *Player) SetTotalTime(t int) {
	p.mu.Lock()
	p.totalTime = t
	p.mu.Unlock()
}

// TotalTime returns the media length in seconds
func (p *Player) TotalTime() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalTime
}

// SetSource updates the current input path
func (p *Player) SetSource(s string) {
	p.mu.Lock()
	p.source = s
	p.mu.Unlock()
}

// Source returns the current input path
func (p *Player) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// AdvanceIfPlaying atomically increments the elapsed time by one second
// iff the player is in the Playing state; otherwise it is a no-op
func (p *Player) AdvanceIfPlaying() {
	p.mu.Lock()
	if p.state == domain.StatePlaying {
		p.currentTime++
	}
	p.mu.Unlock()
}

// Snapshot returns a copy of all attributes taken under a single lock
// acquisition. Consumers that only need one attribute should use the
// individual accessors instead.
func (p *Player) Snapshot() domain.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return domain.Snapshot{
		Volume:      p.volume,
		Title:       p.title,
		State:       p.state,
		CurrentTime: p.currentTime,
		TotalTime:   p.totalTime,
		Source:      p.source,
	}
}

// Package session owns the control-protocol session: the transport, the
// read loop with its line assembly, and the periodic dispatch and
// time-advance ticks.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vlcbridge/vlcbridge/internal/domain"
	"github.com/vlcbridge/vlcbridge/internal/player"
	"github.com/vlcbridge/vlcbridge/internal/protocol"
	"github.com/vlcbridge/vlcbridge/internal/queue"
	"go.uber.org/zap"
)

const (
	// readTimeout bounds each transport read; an expired wait is a
	// keep-alive poll and the read is simply retried
	readTimeout = 60 * time.Second

	// dispatchInterval is the command dispatch poll period. It bounds
	// command latency; sends are not event-driven on enqueue.
	dispatchInterval = 250 * time.Millisecond

	// advanceInterval is the derived-time tick period
	advanceInterval = time.Second
)

// Driver maintains one session with the remote player for its whole
// lifetime. There is no reconnect: a transport failure or remote close
// ends the session, and that is a clean termination, not an error.
type Driver struct {
	logger     *zap.Logger
	cfg        domain.Config
	player     *player.Player
	queue      *queue.Queue
	classifier *protocol.Classifier
	dial       DialFunc

	events          chan domain.Snapshot
	done            chan struct{}
	doneOnce        sync.Once
	wg              sync.WaitGroup
	lastDropWarning time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	conn    Conn
}

// NewDriver creates a session driver. All collaborators are injected;
// the driver never reaches for shared globals.
func NewDriver(
	logger *zap.Logger,
	cfg domain.Config,
	p *player.Player,
	q *queue.Queue,
	cls *protocol.Classifier,
	dial DialFunc,
) *Driver {
	return &Driver{
		logger:     logger,
		cfg:        cfg,
		player:     p,
		queue:      q,
		classifier: cls,
		dial:       dial,
		events:     make(chan domain.Snapshot, 10),
		done:       make(chan struct{}),
	}
}

// Start dials the player's control interface and launches the read,
// dispatch, and time-advance loops. A setup failure (name resolution,
// connection refused) is fatal: the session never starts.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = true

	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel
	d.mu.Unlock()

	d.logger.Info("Connecting to player", zap.String("addr", d.cfg.PlayerAddr()))

	conn, err := d.dial(d.cfg.PlayerAddr())
	if err != nil {
		cancel()
		d.mu.Lock()
		defer d.mu.Unlock()
		d.running = false
		d.cancel = nil
		return fmt.Errorf("session setup failed: %w", err)
	}

	d.mu.Lock()
	d.conn = conn
	d.mu.Unlock()

	d.logger.Info("Connected to player")

	// Populate the player state promptly; subsequent queries are
	// caller-driven.
	d.queue.Enqueue("is_playing", isPlayingHandler(d.player))
	d.queue.Enqueue("title", titleHandler(d.player, d.logger))
	d.queue.Enqueue("get_time", currentTimeHandler(d.player))
	d.queue.Enqueue("get_length", totalTimeHandler(d.player))

	d.wg.Add(3)
	go d.readLoop(sessionCtx)
	go d.dispatchLoop(sessionCtx)
	go d.advanceLoop(sessionCtx)

	return nil
}

// Stop gracefully tears the session down
func (d *Driver) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.running = false
	conn := d.conn
	d.mu.Unlock()

	// Closing the transport unblocks a read in progress.
	if conn != nil {
		if err := conn.Close(); err != nil {
			d.logger.Debug("Transport close", zap.Error(err))
		}
	}

	d.logger.Debug("Waiting for session goroutines to finish")
	d.wg.Wait()

	// All producers are done; safe to close the channel.
	close(d.events)

	d.logger.Info("Session shutdown complete")
	return nil
}

// Events returns a read-only channel emitting a player snapshot whenever
// an incoming line or a time tick changed the state
func (d *Driver) Events() <-chan domain.Snapshot {
	return d.events
}

// Done is closed once the session has terminated
func (d *Driver) Done() <-chan struct{} {
	return d.done
}

// Enqueue submits a caller-supplied command verb to the pipeline
func (d *Driver) Enqueue(name string, onResponse func(line string) error) {
	d.queue.Enqueue(name, onResponse)
}

// readLoop assembles newline-terminated lines from bounded-wait reads and
// hands each complete line to the classifier
func (d *Driver) readLoop(ctx context.Context) {
	defer d.wg.Done()
	defer d.doneOnce.Do(func() { close(d.done) })

	d.logger.Info("Read loop started")

	var buf []byte
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Read loop stopped")
			return
		default:
		}

		chunk, err := d.conn.Read(readTimeout)
		if errors.Is(err, ErrReadTimeout) {
			// Idle poll; keep whatever partial line we hold.
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				d.logger.Info("Read loop stopped")
			} else {
				// Remote reset or clean close ends the session
				// successfully; the player may have been shut down.
				d.logger.Info("Remote connection closed", zap.Error(err))
			}
			return
		}

		buf = append(buf, chunk...)
		for {
			i := bytes.IndexByte(buf, '\n')
			if i < 0 {
				break
			}
			line := strings.TrimSpace(string(buf[:i]))
			buf = buf[i+1:]
			if line == "" {
				continue
			}
			d.classifier.HandleLine(line)
			d.publish()
		}
	}
}

// dispatchLoop drains the queue head into the transport on a fixed period
func (d *Driver) dispatchLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(dispatchInterval)
	defer ticker.Stop()

	d.logger.Info("Dispatch loop started")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Dispatch loop stopped")
			return
		case <-ticker.C:
			if err := d.queue.DispatchTick(d.conn); err != nil {
				d.logger.Warn("Dispatch failed", zap.Error(err))
			}
		}
	}
}

// advanceLoop increments the derived elapsed time once per second while
// the player reports Playing
func (d *Driver) advanceLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(advanceInterval)
	defer ticker.Stop()

	d.logger.Info("Time advance loop started")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Time advance loop stopped")
			return
		case <-ticker.C:
			d.player.AdvanceIfPlaying()
			if d.player.State() == domain.StatePlaying {
				d.publish()
			}
		}
	}
}

// publish emits the current snapshot without blocking. Dropping
// intermediate snapshots is acceptable; consumers always receive a later,
// fresher one.
func (d *Driver) publish() {
	select {
	case d.events <- d.player.Snapshot():
	default:
		d.logDropWarning()
	}
}

// logDropWarning rate-limits the "channel full" warning to avoid log spam
// while a slow consumer is attached
func (d *Driver) logDropWarning() {
	d.mu.Lock()
	defer d.mu.Unlock()

	const warningInterval = 5 * time.Second
	now := time.Now()
	if now.Sub(d.lastDropWarning) >= warningInterval {
		d.logger.Warn("Events channel full, dropping snapshot")
		d.lastDropWarning = now
	}
}

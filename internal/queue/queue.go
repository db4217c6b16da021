// Package queue implements the outbound command pipeline: an ordered FIFO
// of command verbs with at most one command in flight at a time.
package queue

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"go.uber.org/zap"
)

// ErrNoPending is returned by MatchResponse when a data-response line
// arrives with no outstanding command to bind it to.
var ErrNoPending = errors.New("no outstanding command")

// ackLine matches bare numeric acknowledgments, e.g. "seek: returned 0 (no error)"
var ackLine = regexp.MustCompile(`^([a-zA-Z_-]+): returned ([0-9]+).*$`)

// ValueError reports a malformed payload in a command's data response.
// The player attribute the command would have set is left unchanged.
type ValueError struct {
	Command string
	Value   string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value for command %q: %q", e.Command, e.Value)
}

// ResponseFunc consumes the raw data-response line bound to a command.
// A returned error is recoverable; it is surfaced as an observation and
// processing continues.
type ResponseFunc func(line string) error

type command struct {
	name       string
	onResponse ResponseFunc
}

// LineWriter writes one command line to the transport
type LineWriter interface {
	WriteLine(line string) error
}

// Queue orders outbound commands and routes their replies back in
// submission order. The wire format carries no correlation id, so the
// oldest unresolved command always owns the next data response.
type Queue struct {
	logger *zap.Logger

	mu          sync.Mutex
	pending     []command
	readyToSend bool
}

// New creates an empty command queue
func New(logger *zap.Logger) *Queue {
	return &Queue{logger: logger}
}

// Enqueue appends a command. If the queue was empty the ready flag is set
// so the next dispatch tick sends immediately. The queue is unbounded;
// command volume is operator-paced.
func (q *Queue) Enqueue(name string, onResponse ResponseFunc) {
	q.mu.Lock()
	if len(q.pending) == 0 {
		q.readyToSend = true
	}
	q.pending = append(q.pending, command{name: name, onResponse: onResponse})
	q.mu.Unlock()
}

// DispatchTick sends the head command when the queue is ready. It is
// invoked on a fixed period rather than on enqueue; the poll period bounds
// command latency and is the pipeline's backpressure mechanism.
func (q *Queue) DispatchTick(w LineWriter) error {
	q.mu.Lock()
	if !q.readyToSend || len(q.pending) == 0 {
		q.mu.Unlock()
		return nil
	}
	q.readyToSend = false
	name := q.pending[0].name
	q.mu.Unlock()

	// Network write happens outside the lock.
	if err := w.WriteLine(name); err != nil {
		return fmt.Errorf("send command %q: %w", name, err)
	}
	q.logger.Debug("Command sent", zap.String("command", name))
	return nil
}

// MatchAck reports whether line is an acknowledgment. When the
// acknowledged name equals the head command's name the head is resolved
// without invoking its response handler and the queue is re-armed.
// Ack-shaped lines are consumed by this path even when the name does not
// match the head, so they never bind to a data-response handler.
func (q *Queue) MatchAck(line string) bool {
	m := ackLine.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	name := m[1]

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) > 0 && q.pending[0].name == name {
		q.pending = q.pending[1:]
		q.readyToSend = true
		q.logger.Debug("Command acknowledged", zap.String("command", name))
	} else {
		q.logger.Warn("Acknowledgment for command that is not in flight",
			zap.String("command", name))
	}
	return true
}

// MatchResponse binds line to the oldest outstanding command, removes it,
// re-arms the queue, and invokes its response handler. It returns
// ErrNoPending when the queue is empty, or the handler's error.
func (q *Queue) MatchResponse(line string) error {
	q.mu.Lock()
	if len(q.pending) == 0 {
		q.mu.Unlock()
		return ErrNoPending
	}
	head := q.pending[0]
	q.pending = q.pending[1:]
	q.readyToSend = true
	q.mu.Unlock()

	q.logger.Debug("Command response received",
		zap.String("command", head.name),
		zap.String("line", line))
	return head.onResponse(line)
}

// Len returns the number of unresolved commands
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Ready reports whether the next dispatch tick would send
func (q *Queue) Ready() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.readyToSend
}

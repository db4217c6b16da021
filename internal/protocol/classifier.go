package protocol

import (
	"errors"

	"github.com/vlcbridge/vlcbridge/internal/queue"
	"go.uber.org/zap"
)

// Classifier routes each complete incoming line to exactly one of three
// handling paths: status-change notification, command acknowledgment, or
// data response. The order is load-bearing: a line must be ruled out as a
// notification, then as an acknowledgment, before it may be bound to the
// oldest outstanding command.
type Classifier struct {
	logger *zap.Logger
	parser *StatusParser
	queue  *queue.Queue
}

// NewClassifier wires the classifier to its parser and command queue
func NewClassifier(logger *zap.Logger, parser *StatusParser, q *queue.Queue) *Classifier {
	return &Classifier{logger: logger, parser: parser, queue: q}
}

// HandleLine processes one line. All per-line problems are isolated to
// that line; nothing here aborts the session.
func (c *Classifier) HandleLine(line string) {
	if payload, ok := MatchStatusLine(line); ok {
		if !c.parser.HandlePayload(payload) {
			c.logger.Warn("Unmatched status change", zap.String("payload", payload))
		}
		return
	}

	if c.queue.MatchAck(line) {
		return
	}

	if err := c.queue.MatchResponse(line); err != nil {
		var ve *queue.ValueError
		switch {
		case errors.Is(err, queue.ErrNoPending):
			c.logger.Warn("Unmatched line", zap.String("line", line))
		case errors.As(err, &ve):
			c.logger.Warn("Invalid value in command response",
				zap.String("command", ve.Command),
				zap.String("value", ve.Value))
		default:
			c.logger.Warn("Response handler failed",
				zap.String("line", line),
				zap.Error(err))
		}
	}
}

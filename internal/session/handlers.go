package session

import (
	"strconv"

	"github.com/vlcbridge/vlcbridge/internal/domain"
	"github.com/vlcbridge/vlcbridge/internal/player"
	"github.com/vlcbridge/vlcbridge/internal/queue"
	"go.uber.org/zap"
)

// Response handlers for the informational queries the driver issues at
// startup. Each binds one command's data response to a player attribute.

// isPlayingHandler maps "0" to Ended and anything else to Playing
func isPlayingHandler(p *player.Player) queue.ResponseFunc {
	return func(line string) error {
		if line == "0" {
			p.SetState(domain.StateEnded)
		} else {
			p.SetState(domain.StatePlaying)
		}
		return nil
	}
}

// titleHandler stores the raw response line as the media title
func titleHandler(p *player.Player, logger *zap.Logger) queue.ResponseFunc {
	return func(line string) error {
		p.SetTitle(line)
		logger.Debug("Title set", zap.String("title", line))
		return nil
	}
}

// currentTimeHandler parses the elapsed time in seconds
func currentTimeHandler(p *player.Player) queue.ResponseFunc {
	return func(line string) error {
		t, err := strconv.Atoi(line)
		if err != nil {
			return &queue.ValueError{Command: "get_time", Value: line}
		}
		p.SetCurrentTime(t)
		return nil
	}
}

// totalTimeHandler parses the media length in seconds
func totalTimeHandler(p *player.Player) queue.ResponseFunc {
	return func(line string) error {
		t, err := strconv.Atoi(line)
		if err != nil {
			return &queue.ValueError{Command: "get_length", Value: line}
		}
		p.SetTotalTime(t)
		return nil
	}
}

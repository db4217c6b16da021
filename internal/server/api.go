// Package server exposes the player-state model over a local HTTP and
// WebSocket interface.
package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vlcbridge/vlcbridge/internal/domain"
	"github.com/vlcbridge/vlcbridge/internal/player"
	"go.uber.org/zap"
)

// API handles HTTP control endpoints.
type API struct {
	logger    *zap.Logger
	player    *player.Player
	commander domain.Commander
}

// NewAPI creates a new API handler.
func NewAPI(logger *zap.Logger, p *player.Player, cmd domain.Commander) *API {
	return &API{
		logger:    logger,
		player:    p,
		commander: cmd,
	}
}

// CommandRequest is the request body for the command endpoint.
type CommandRequest struct {
	Verb string `json:"verb" binding:"required"`
}

// CommandResponse is the response for the command endpoint.
type CommandResponse struct {
	Status  string `json:"status"`
	Verb    string `json:"verb,omitempty"`
	Message string `json:"message,omitempty"`
}

// Status returns the current player snapshot.
func (a *API) Status(c *gin.Context) {
	c.JSON(http.StatusOK, a.player.Snapshot())
}

// Command enqueues a caller-supplied verb for the remote player. The
// command is pipelined behind any outstanding ones; its data response, if
// any, is logged when it arrives.
func (a *API) Command(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, CommandResponse{
			Status:  "error",
			Message: "verb is required",
		})
		return
	}

	verb := strings.TrimSpace(req.Verb)
	if verb == "" || strings.ContainsAny(verb, "\r\n") {
		c.JSON(http.StatusBadRequest, CommandResponse{
			Status:  "error",
			Verb:    req.Verb,
			Message: "verb must be a single non-empty line",
		})
		return
	}

	a.logger.Info("Command accepted", zap.String("verb", verb))

	a.commander.Enqueue(verb, func(line string) error {
		a.logger.Info("Command response",
			zap.String("verb", verb),
			zap.String("line", line))
		return nil
	})

	c.JSON(http.StatusAccepted, CommandResponse{
		Status: "queued",
		Verb:   verb,
	})
}

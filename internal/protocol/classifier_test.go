package protocol

import (
	"strconv"
	"testing"

	"github.com/vlcbridge/vlcbridge/internal/domain"
	"github.com/vlcbridge/vlcbridge/internal/player"
	"github.com/vlcbridge/vlcbridge/internal/queue"
	"go.uber.org/zap"
)

func newTestClassifier(t *testing.T) (*Classifier, *player.Player, *queue.Queue) {
	t.Helper()
	logger := zap.NewNop()
	p := player.New(logger)
	q := queue.New(logger)
	return NewClassifier(logger, NewStatusParser(logger, p), q), p, q
}

func TestHandleLine_Notification(t *testing.T) {
	cls, p, q := newTestClassifier(t)
	q.Enqueue("title", func(string) error {
		t.Error("notification must not consume the queue head")
		return nil
	})

	cls.HandleLine("status change: ( audio volume: -20 )")

	if p.Volume() != -20 {
		t.Errorf("expected volume -20, got %d", p.Volume())
	}
	if q.Len() != 1 {
		t.Error("notification consumed the queue head")
	}
}

func TestHandleLine_AckBeforeResponse(t *testing.T) {
	cls, _, q := newTestClassifier(t)

	invoked := false
	q.Enqueue("get_time", func(string) error {
		invoked = true
		return nil
	})

	// An acknowledgment resolves the head without touching its handler.
	cls.HandleLine("get_time: returned 0 (no error)")

	if invoked {
		t.Error("acknowledgment invoked the response handler")
	}
	if q.Len() != 0 {
		t.Errorf("expected resolved head, %d still pending", q.Len())
	}
	if !q.Ready() {
		t.Error("queue should be re-armed after an ack")
	}
}

func TestHandleLine_DataResponse(t *testing.T) {
	cls, p, q := newTestClassifier(t)

	q.Enqueue("title", func(line string) error {
		p.SetTitle(line)
		return nil
	})

	cls.HandleLine("Movie.mp4")

	if p.Title() != "Movie.mp4" {
		t.Errorf("expected title 'Movie.mp4', got %q", p.Title())
	}
	if q.Len() != 0 {
		t.Error("data response did not resolve the head")
	}
	if !q.Ready() {
		t.Error("queue should be re-armed after a data response")
	}
}

func TestHandleLine_IsPlayingScenario(t *testing.T) {
	cls, p, q := newTestClassifier(t)

	handler := func(line string) error {
		if line == "0" {
			p.SetState(domain.StateEnded)
		} else {
			p.SetState(domain.StatePlaying)
		}
		return nil
	}

	q.Enqueue("is_playing", handler)
	cls.HandleLine("0")
	if p.State() != domain.StateEnded {
		t.Errorf("expected Ended after '0', got %v", p.State())
	}

	q.Enqueue("is_playing", handler)
	cls.HandleLine("1")
	if p.State() != domain.StatePlaying {
		t.Errorf("expected Playing after '1', got %v", p.State())
	}
}

func TestHandleLine_WindowsInputScenario(t *testing.T) {
	cls, p, _ := newTestClassifier(t)

	cls.HandleLine("status change: ( new input: file:///C:/Movies/a.mp4 )")

	if p.Source() != `C:\Movies\a.mp4` {
		t.Errorf("expected normalized source, got %q", p.Source())
	}
}

func TestHandleLine_UnmatchedLineIsNonFatal(t *testing.T) {
	cls, p, q := newTestClassifier(t)

	// Empty queue: the line has nowhere to go but processing continues.
	cls.HandleLine("stray output")

	if q.Len() != 0 || p.Snapshot() != (domain.Snapshot{State: domain.StateStopped}) {
		t.Error("unmatched line must leave queue and player untouched")
	}

	// The session is still usable afterwards.
	cls.HandleLine("status change: ( play state: 2 )")
	if p.State() != domain.StatePlaying {
		t.Error("classifier stopped working after an unmatched line")
	}
}

func TestHandleLine_MalformedValueRecoverable(t *testing.T) {
	cls, p, q := newTestClassifier(t)

	q.Enqueue("get_time", func(line string) error {
		v, err := strconv.Atoi(line)
		if err != nil {
			return &queue.ValueError{Command: "get_time", Value: line}
		}
		p.SetCurrentTime(v)
		return nil
	})

	cls.HandleLine("garbage")

	if p.CurrentTime() != 0 {
		t.Error("malformed value must leave the attribute unchanged")
	}
	if q.Len() != 0 {
		t.Error("failed command should still be resolved")
	}
	if !q.Ready() {
		t.Error("queue should be re-armed after a malformed value")
	}
}

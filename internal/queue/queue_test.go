package queue

import (
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// writerStub records lines written to the transport
type writerStub struct {
	mu    sync.Mutex
	lines []string
	err   error
}

func (w *writerStub) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.lines = append(w.lines, line)
	return nil
}

func (w *writerStub) written() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.lines...)
}

func noResponse(string) error { return nil }

func TestEnqueueArmsEmptyQueue(t *testing.T) {
	q := New(zap.NewNop())

	if q.Ready() {
		t.Fatal("fresh queue should not be ready")
	}

	q.Enqueue("title", noResponse)
	if !q.Ready() {
		t.Error("enqueue into empty queue should arm the ready flag")
	}
	if q.Len() != 1 {
		t.Errorf("expected 1 pending, got %d", q.Len())
	}
}

func TestDispatchTick(t *testing.T) {
	q := New(zap.NewNop())
	w := &writerStub{}

	// Empty queue: nothing sent.
	if err := q.DispatchTick(w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.written()) != 0 {
		t.Fatal("empty queue should not send")
	}

	q.Enqueue("is_playing", noResponse)

	if err := q.DispatchTick(w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := w.written(); len(got) != 1 || got[0] != "is_playing" {
		t.Errorf("expected [is_playing] sent, got %v", got)
	}

	// Head is now in flight: a second tick must not resend.
	if err := q.DispatchTick(w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := w.written(); len(got) != 1 {
		t.Errorf("in-flight command resent: %v", got)
	}
}

func TestDispatchTickWriteError(t *testing.T) {
	q := New(zap.NewNop())
	w := &writerStub{err: errors.New("broken pipe")}

	q.Enqueue("title", noResponse)
	if err := q.DispatchTick(w); err == nil {
		t.Error("expected write error to propagate")
	}
}

func TestFIFOResponseOrder(t *testing.T) {
	q := New(zap.NewNop())

	var got []string
	record := func(tag string) ResponseFunc {
		return func(line string) error {
			got = append(got, tag+":"+line)
			return nil
		}
	}

	q.Enqueue("c1", record("c1"))
	q.Enqueue("c2", record("c2"))
	q.Enqueue("c3", record("c3"))

	for _, line := range []string{"r1", "r2", "r3"} {
		if err := q.MatchResponse(line); err != nil {
			t.Fatalf("MatchResponse(%q): %v", line, err)
		}
	}

	want := []string{"c1:r1", "c2:r2", "c3:r3"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue, got %d pending", q.Len())
	}
	if !q.Ready() {
		t.Error("queue should be re-armed after last response")
	}
}

func TestMatchAck(t *testing.T) {
	tests := []struct {
		name        string
		head        string
		line        string
		wantMatched bool
		wantLen     int
	}{
		{
			name:        "ack resolves matching head",
			head:        "seek",
			line:        "seek: returned 0 (no error)",
			wantMatched: true,
			wantLen:     0,
		},
		{
			name:        "ack for different command consumed but head kept",
			head:        "get_time",
			line:        "seek: returned 0 (no error)",
			wantMatched: true,
			wantLen:     1,
		},
		{
			name:        "data line is not an ack",
			head:        "title",
			line:        "Movie.mp4",
			wantMatched: false,
			wantLen:     1,
		},
		{
			name:        "non-numeric return value is not an ack",
			head:        "seek",
			line:        "seek: returned nothing",
			wantMatched: false,
			wantLen:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New(zap.NewNop())
			invoked := false
			q.Enqueue(tt.head, func(string) error {
				invoked = true
				return nil
			})

			if got := q.MatchAck(tt.line); got != tt.wantMatched {
				t.Errorf("MatchAck: expected %v, got %v", tt.wantMatched, got)
			}
			if invoked {
				t.Error("acknowledgment must never invoke the response handler")
			}
			if q.Len() != tt.wantLen {
				t.Errorf("expected %d pending, got %d", tt.wantLen, q.Len())
			}
			if tt.wantLen == 0 && !q.Ready() {
				t.Error("resolved ack should re-arm the queue")
			}
		})
	}
}

func TestMatchResponseEmptyQueue(t *testing.T) {
	q := New(zap.NewNop())

	err := q.MatchResponse("orphan line")
	if !errors.Is(err, ErrNoPending) {
		t.Errorf("expected ErrNoPending, got %v", err)
	}
}

func TestMatchResponseHandlerError(t *testing.T) {
	q := New(zap.NewNop())
	q.Enqueue("get_time", func(line string) error {
		return &ValueError{Command: "get_time", Value: line}
	})

	err := q.MatchResponse("not-a-number")

	var ve *ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValueError, got %v", err)
	}
	if ve.Command != "get_time" || ve.Value != "not-a-number" {
		t.Errorf("unexpected ValueError contents: %+v", ve)
	}

	// The failed command is still resolved; the pipeline moves on.
	if q.Len() != 0 {
		t.Errorf("expected empty queue, got %d pending", q.Len())
	}
	if !q.Ready() {
		t.Error("queue should be re-armed after a failed handler")
	}
}

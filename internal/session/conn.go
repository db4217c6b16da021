package session

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrReadTimeout is returned by Conn.Read when the bounded wait elapses
// without any data. The driver treats it as a keep-alive poll, not an
// error.
var ErrReadTimeout = errors.New("read timed out")

// Conn defines the interface for the raw control-protocol transport.
// This abstraction allows us to script and mock the remote player in tests.
//
//go:generate mockgen -destination=mocks/conn_mock.go -package=mocks github.com/vlcbridge/vlcbridge/internal/session Conn
type Conn interface {
	// Read blocks for at most timeout and returns whatever bytes arrived.
	// It returns ErrReadTimeout when the wait elapsed with no data, and
	// io.EOF or a connection error when the remote closed the session.
	Read(timeout time.Duration) ([]byte, error)

	// WriteLine writes one command line plus terminator
	WriteLine(line string) error

	// Close closes the transport
	Close() error
}

// DialFunc establishes a Conn to the player's control interface.
// Name-resolution and connection-refused failures surface here and are
// fatal to session setup.
type DialFunc func(addr string) (Conn, error)

// netConn is the real TCP implementation
type netConn struct {
	c   net.Conn
	buf []byte
}

// Dial connects to the player's control interface over TCP
func Dial(addr string) (Conn, error) {
	c, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect to player at %s: %w", addr, err)
	}
	return &netConn{c: c, buf: make([]byte, 4096)}, nil
}

// Read returns the next chunk of bytes, waiting at most timeout
func (c *netConn) Read(timeout time.Duration) ([]byte, error) {
	if err := c.c.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}
	n, err := c.c.Read(c.buf)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, ErrReadTimeout
		}
		return nil, err
	}
	out := make([]byte, n)
	copy(out, c.buf[:n])
	return out, nil
}

// WriteLine writes line plus the newline terminator
func (c *netConn) WriteLine(line string) error {
	if _, err := c.c.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}

// Close closes the TCP connection
func (c *netConn) Close() error {
	return c.c.Close()
}

// Package transport owns the single byte-oriented stream a controller
// talks to a pool over — plain TCP or TLS-over-TCP behind one uniform
// surface. It is not a class hierarchy: one struct holding a single
// net.Conn that is either the plain TCP connection or a TLS client
// wrapping it, per Design Notes §9 ("do not use deep inheritance").
package transport

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ErrWouldBlock is returned by ReadLine when no complete line is
// available yet. It is a first-class, non-error outcome — callers
// simply defer to the next poll.
var ErrWouldBlock = errors.New("transport: would block")

// ErrBrokenPipe is returned by ReadLine when the peer closed the
// connection (a zero-byte read) or a read failed, for any reason other
// than the poll deadline, without delivering any data. It is always
// terminal: callers drop the transport.
var ErrBrokenPipe = errors.New("transport: broken pipe")

const (
	dialTimeout = 15 * time.Second
	pollTimeout = 50 * time.Millisecond
)

// Transport is a connected line-oriented stream, plain or TLS.
type Transport struct {
	conn net.Conn

	// pending holds bytes already pulled off conn that don't yet make
	// up a complete line. A poll that times out mid-line must not drop
	// them — the next poll picks up where this one left off.
	pending []byte
}

// Connect performs name resolution and a synchronous TCP connect to
// endpoint ("host:port"). If useTLS, it derives an SNI hostname and
// performs a TLS handshake against the platform trust store before
// returning. After Connect returns, all I/O through ReadLine is
// non-blocking (bounded by a short internal poll deadline).
func Connect(endpoint string, useTLS bool) (*Transport, error) {
	conn, err := net.DialTimeout("tcp", endpoint, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetKeepAlive(true)
		tc.SetKeepAlivePeriod(45 * time.Second)
		tc.SetNoDelay(true)
	}

	if useTLS {
		sni := deriveSNI(endpoint)
		tlsConn := tls.Client(conn, &tls.Config{ServerName: sni})
		tlsConn.SetDeadline(time.Now().Add(dialTimeout))
		if err := tlsConn.Handshake(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("tls handshake to %s (sni %s): %w", endpoint, sni, err)
		}
		tlsConn.SetDeadline(time.Time{})
		conn = tlsConn
	}

	return &Transport{conn: conn}, nil
}

// deriveSNI derives the SNI hostname as the last two dot-separated
// labels of the host portion of endpoint. This is a simplification
// inherited from the source protocol and an open question (Design
// Notes §9): it misbehaves for two-label public suffixes like
// "pool.co.uk" and for bare IP literals. Kept as-is rather than fixed,
// per spec.
func deriveSNI(endpoint string) string {
	host, _, err := net.SplitHostPort(endpoint)
	if err != nil {
		host = endpoint
	}
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// ReadLine reads a single '\n'-terminated line, inclusive, and returns
// it. It returns ErrWouldBlock if no complete line arrived within the
// poll window, ErrBrokenPipe on a zero-byte read, peer hangup or any
// other read failure that delivered no data, and a wrapped error for a
// read failure that arrived together with data — all are terminal
// except ErrWouldBlock. Bytes read but not yet forming a complete line are
// held across calls rather than dropped, so a line split by the poll
// deadline is reassembled on a later call instead of corrupting the
// stream.
func (t *Transport) ReadLine() ([]byte, error) {
	if line, ok := t.takePendingLine(); ok {
		return line, nil
	}

	t.conn.SetReadDeadline(time.Now().Add(pollTimeout))
	buf := make([]byte, 4096)
	n, err := t.conn.Read(buf)
	if n > 0 {
		t.pending = append(t.pending, buf[:n]...)
	}
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			if line, ok := t.takePendingLine(); ok {
				return line, nil
			}
			return nil, ErrWouldBlock
		}
		if n == 0 {
			return nil, ErrBrokenPipe
		}
		return nil, fmt.Errorf("transport: read: %w", err)
	}
	if n == 0 {
		return nil, ErrBrokenPipe
	}
	if line, ok := t.takePendingLine(); ok {
		return line, nil
	}
	return nil, ErrWouldBlock
}

// takePendingLine extracts one complete '\n'-terminated line from the
// front of t.pending, if one is present.
func (t *Transport) takePendingLine() ([]byte, bool) {
	idx := bytes.IndexByte(t.pending, '\n')
	if idx < 0 {
		return nil, false
	}
	line := append([]byte(nil), t.pending[:idx+1]...)
	t.pending = append([]byte(nil), t.pending[idx+1:]...)
	return line, true
}

// WriteAll writes the exact bytes given. Callers append their own '\n'
// terminator; the transport does not frame outbound data.
func (t *Transport) WriteAll(data []byte) error {
	t.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	_, err := t.conn.Write(data)
	if err != nil {
		return fmt.Errorf("transport: write: %w", err)
	}
	return nil
}

// Flush is a no-op for the unbuffered writer path but kept as part of
// the uniform surface in case a buffered writer is introduced later.
func (t *Transport) Flush() error { return nil }

// Close releases the underlying connection.
func (t *Transport) Close() error {
	if t.conn == nil {
		return nil
	}
	return t.conn.Close()
}

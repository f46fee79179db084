// Package exprserver provides the one-shot expression protocol server.
package exprserver

import (
	"errors"
	"io"
	"net"
	"time"
)

// cycleReader frames one request as one read cycle.
//
// The first read blocks for up to idle. While a read fills the whole
// buffer more data may be pending, so further reads are attempted with a
// drain deadline. The cycle ends on a short read, on drain deadline
// expiry, or on EOF. The whole cycle is bounded by total once the first
// bytes have arrived.
type cycleReader struct {
	bufSize int
	idle    time.Duration
	drain   time.Duration
	total   time.Duration
}

// read feeds the bytes of one read cycle into sess. A nil error means
// the cycle completed normally, even if no bytes arrived before EOF.
func (r cycleReader) read(conn net.Conn, sess *Session) error {
	buf := make([]byte, r.bufSize)

	if err := conn.SetReadDeadline(time.Now().Add(r.idle)); err != nil {
		return err
	}
	n, err := conn.Read(buf)
	if n > 0 {
		if rerr := sess.Receive(buf[:n]); rerr != nil {
			return rerr
		}
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	limit := time.Now().Add(r.total)
	for n == len(buf) {
		deadline := time.Now().Add(r.drain)
		if deadline.After(limit) {
			deadline = limit
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			return err
		}

		n, err = conn.Read(buf)
		if n > 0 {
			if rerr := sess.Receive(buf[:n]); rerr != nil {
				return rerr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || isTimeout(err) {
				return nil
			}
			return err
		}
	}
	return nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

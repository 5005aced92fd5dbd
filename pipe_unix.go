//go:build !windows

package subprocess

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sys/unix"
)

// nonblockReadPipe reads a non-blocking pipe descriptor by polling it in
// bounded sleep increments, so a finite timeout is honored without an
// indefinite blocking syscall. The descriptor is raw on purpose: wrapping
// it in an os.File would hand it to the runtime poller and reintroduce
// blocking reads.
type nonblockReadPipe struct {
	stream   Stream
	clock    clockwork.Clock
	interval time.Duration

	mu     sync.Mutex
	fd     int
	eof    bool
	closed bool
}

// newOutputPipe creates the pipe pair for one output stream: the parent
// keeps the non-blocking read end, the child inherits the write end.
func newOutputPipe(stream Stream, clock clockwork.Clock, interval time.Duration) (*nonblockReadPipe, *os.File, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, nil, err
	}
	unix.CloseOnExec(fds[0])
	unix.CloseOnExec(fds[1])
	if err := unix.SetNonblock(fds[0], true); err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return nil, nil, err
	}

	parent := &nonblockReadPipe{
		stream:   stream,
		clock:    clock,
		interval: interval,
		fd:       fds[0],
	}
	child := os.NewFile(uintptr(fds[1]), stream.String())
	return parent, child, nil
}

// newInputPipe creates the stdin pipe pair: the child inherits the read
// end, the parent keeps the blocking write end.
func newInputPipe() (*stdinPipe, *os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}
	return &stdinPipe{f: w}, r, nil
}

// poll performs one non-blocking drain of the descriptor. It returns the
// bytes read, whether end of stream was reached, and any genuine error.
// A (nil, false, nil) result means no data is available yet.
func (p *nonblockReadPipe) poll() ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, false, os.ErrClosed
	}
	if p.eof {
		return nil, true, nil
	}

	var out []byte
	buf := make([]byte, readChunkSize)
	for {
		n, err := unix.Read(p.fd, buf)
		if n > 0 {
			out = append(out, buf[:n]...)
			continue
		}
		if err == nil {
			// Zero-length read: the peer closed its end and the
			// stream is drained.
			p.eof = true
			return out, true, nil
		}
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			return out, false, nil
		}
		return out, false, err
	}
}

func (p *nonblockReadPipe) Read(timeout time.Duration) ([]byte, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = p.clock.Now().Add(timeout)
	}

	for {
		out, eof, err := p.poll()
		if err != nil {
			return nil, &ReadError{Stream: p.stream, Err: err}
		}
		if len(out) > 0 {
			return out, nil
		}
		if eof {
			return nil, io.EOF
		}
		if timeout == 0 {
			return nil, nil
		}
		if timeout > 0 && !p.clock.Now().Before(deadline) {
			return nil, nil
		}
		p.clock.Sleep(p.interval)
	}
}

func (p *nonblockReadPipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return unix.Close(p.fd)
}

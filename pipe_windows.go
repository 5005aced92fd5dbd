//go:build windows

package subprocess

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// readerPipe services a blocking pipe through a dedicated background
// reader goroutine, since Windows has no non-blocking anonymous pipes.
// The goroutine shares exactly one buffer, one EOF/error pair and one
// notify channel with the control flow; nothing else crosses the thread
// boundary.
type readerPipe struct {
	stream Stream
	f      *os.File
	clock  clockwork.Clock

	mu     sync.Mutex // guards buf, eof, err, closed
	buf    bytes.Buffer
	eof    bool
	err    error
	closed bool

	notify chan struct{} // pulsed after every deposit
	done   chan struct{} // closed when the reader goroutine returns
}

// newOutputPipe creates the pipe pair for one output stream and starts
// its reader goroutine. The parent keeps the read end, the child
// inherits the write end.
func newOutputPipe(stream Stream, clock clockwork.Clock, _ time.Duration) (*readerPipe, *os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}

	p := &readerPipe{
		stream: stream,
		f:      r,
		clock:  clock,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go p.run()
	return p, w, nil
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

// run issues blocking reads until the stream ends or the pipe is closed,
// depositing every chunk into the shared buffer.
func (p *readerPipe) run() {
	defer close(p.done)

	buf := make([]byte, readChunkSize)
	for {
		n, err := p.f.Read(buf)

		p.mu.Lock()
		if n > 0 {
			p.buf.Write(buf[:n])
		}
		if err != nil {
			p.eof = true
			if !errors.Is(err, io.EOF) && !p.closed {
				p.err = err
			}
		}
		p.mu.Unlock()

		select {
		case p.notify <- struct{}{}:
		default:
		}

		if err != nil {
			return
		}
	}
}

func (p *readerPipe) Read(timeout time.Duration) ([]byte, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = p.clock.Now().Add(timeout)
	}

	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, &ReadError{Stream: p.stream, Err: os.ErrClosed}
		}
		if p.buf.Len() > 0 {
			out := make([]byte, p.buf.Len())
			_, _ = p.buf.Read(out)
			p.mu.Unlock()
			return out, nil
		}
		readErr, eof := p.err, p.eof
		p.mu.Unlock()

		if readErr != nil {
			return nil, &ReadError{Stream: p.stream, Err: readErr}
		}
		if eof {
			return nil, io.EOF
		}
		if timeout == 0 {
			return nil, nil
		}

		var timer <-chan time.Time
		if timeout > 0 {
			remaining := deadline.Sub(p.clock.Now())
			if remaining <= 0 {
				return nil, nil
			}
			timer = p.clock.After(remaining)
		}
		select {
		case <-p.notify:
		case <-timer:
			return nil, nil
		}
	}
}

// Close releases the parent-held end and joins the reader goroutine.
// Closing the file forces the goroutine's pending blocking read to fail,
// which makes it return.
func (p *readerPipe) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	err := p.f.Close()
	<-p.done
	return err
}

package subprocess

import (
	"os"
	"sync"
	"time"
)

const readChunkSize = 4096

// Stream identifies one of the three standard streams of a child process.
type Stream int

const (
	Stdin Stream = iota
	Stdout
	Stderr
)

func (s Stream) String() string {
	switch s {
	case Stdin:
		return "stdin"
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return "stream(?)"
	}
}

// Block requests that a read waits indefinitely for data or end of
// stream. Any negative timeout behaves the same way.
const Block time.Duration = -1

// readTransport is the parent-held end of a child's stdout or stderr.
//
// Read honors three timeout regimes: a negative timeout blocks until data
// arrives or the stream ends, zero performs a single non-blocking poll,
// and a positive timeout polls until the deadline. A timeout with no data
// yields (nil, nil). End of stream yields (nil, io.EOF) once all buffered
// bytes have been drained; genuine failures yield a *ReadError.
//
// There are two implementations: a non-blocking descriptor polled in
// bounded sleep increments where the OS supports non-blocking anonymous
// pipes, and a blocking pipe drained by a background reader goroutine
// into a lock-guarded buffer everywhere else. Higher layers never branch
// on the platform.
type readTransport interface {
	Read(timeout time.Duration) ([]byte, error)
	Close() error
}

// writeTransport is the parent-held write end of the child's stdin.
// Writes follow normal OS back-pressure rules: on a full pipe buffer the
// caller sleeps until the child drains its input.
type writeTransport interface {
	Write(p []byte) (int, error)
	Close() error
}

// stdinPipe is the write transport on every platform: a plain blocking
// OS pipe whose write end stays in the parent.
type stdinPipe struct {
	mu     sync.Mutex
	f      *os.File
	closed bool
}

func (p *stdinPipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, &WriteError{Err: os.ErrClosed}
	}
	f := p.f
	p.mu.Unlock()

	n, err := f.Write(b)
	if err != nil {
		return n, &WriteError{Err: err}
	}
	return n, nil
}

func (p *stdinPipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.f.Close()
}

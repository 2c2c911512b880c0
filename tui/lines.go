package tui

import (
	"bufio"
	"io"
	"sync"

	"github.com/chzyer/readline"
)

// LineSource produces lines typed by the user. Readline blocks until a
// line is available; io.EOF means no more input will come.
type LineSource interface {
	Readline() (string, error)
}

type scannerSource struct {
	s *bufio.Scanner
}

// NewScannerSource reads lines from r, for input that is not a terminal.
func NewScannerSource(r io.Reader) LineSource {
	return &scannerSource{s: bufio.NewScanner(r)}
}

func (s *scannerSource) Readline() (string, error) {
	if s.s.Scan() {
		return s.s.Text(), nil
	}
	if err := s.s.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

type readlineSource struct {
	l *readline.Instance
}

// NewReadlineSource reads lines from an interactive terminal. Ctrl-C on an
// empty line ends the input like Ctrl-D does.
func NewReadlineSource(l *readline.Instance) LineSource {
	return &readlineSource{l: l}
}

func (s *readlineSource) Readline() (string, error) {
	for {
		line, err := s.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return "", io.EOF
			}
			continue
		}
		return line, err
	}
}

// LineReader buffers lines from a LineSource in the background so they can
// be polled without blocking.
type LineReader struct {
	mu    sync.Mutex
	lines []string
	err   error

	// scripted is set when the source is not a terminal. Every line of a
	// script is an answer, so Clear keeps them.
	scripted bool
}

// NewLineReader starts reading src on its own goroutine.
func NewLineReader(src LineSource) *LineReader {
	_, tty := src.(*readlineSource)
	r := &LineReader{scripted: !tty}
	go r.run(src)
	return r
}

func (r *LineReader) run(src LineSource) {
	for {
		line, err := src.Readline()
		r.mu.Lock()
		if err != nil {
			r.err = err
			r.mu.Unlock()
			return
		}
		r.lines = append(r.lines, line)
		r.mu.Unlock()
	}
}

// Scripted reports whether lines come from a pipe or file rather than a
// terminal.
func (r *LineReader) Scripted() bool {
	return r.scripted
}

// Poll returns the oldest buffered line if there is one. Once the buffer
// is empty and the source has failed, the source's error is returned.
func (r *LineReader) Poll() (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lines) > 0 {
		line := r.lines[0]
		r.lines = r.lines[1:]
		return line, true, nil
	}
	return "", false, r.err
}

// Clear drops lines typed ahead of a prompt on a terminal. Scripted input
// is left alone.
func (r *LineReader) Clear() {
	if r.scripted {
		return
	}
	r.mu.Lock()
	r.lines = nil
	r.mu.Unlock()
}

package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows an animated status line with the elapsed time while a
// blocking wait runs. It is safe for concurrent use.
type Spinner struct {
	out      io.Writer
	interval time.Duration

	mu      sync.Mutex
	message string
	started time.Time
	frame   int
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner creates a Spinner writing to w.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{out: w, interval: 100 * time.Millisecond}
}

// IsTerminal reports whether w is a terminal that can redraw a status line.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start begins drawing message. A second Start is ignored.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.message = message
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(s.stop, s.done)
}

// Update replaces the status message.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
	fmt.Fprintf(s.out, "\r%80s\r", "")
}

func (s *Spinner) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	frame := spinnerFrames[s.frame%len(spinnerFrames)]
	s.frame++
	line := fmt.Sprintf("%s %s (%s)", frame, s.message, time.Since(s.started).Truncate(time.Second))
	s.mu.Unlock()

	cyan := color.New(color.FgCyan)
	cyan.Fprintf(s.out, "\r%-80s", line)
}

// Package spinner draws a one-line progress indicator for the pipeline stages
// on a terminal.
package spinner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var defaultFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows the current stage, e.g. "⠹ [2/4] weighting posts".
type Spinner struct {
	out    io.Writer
	frames []string
	delay  time.Duration
	total  int

	mu    sync.Mutex
	stage int
	label string
	stop  context.CancelFunc
	done  chan struct{}
}

// New returns a spinner for a pipeline with total stages. A total of 0
// omits the "[n/total]" counter.
func New(out io.Writer, total int) *Spinner {
	return &Spinner{
		out:    out,
		frames: defaultFrames,
		delay:  80 * time.Millisecond,
		total:  total,
	}
}

// Enabled reports whether w is an interactive terminal worth animating.
func Enabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start begins drawing until Stop is called or ctx is done.
func (s *Spinner) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}

	ctx, s.stop = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
}

// Stage advances to the next stage and shows label.
func (s *Spinner) Stage(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage++
	s.label = label
}

// Stop halts drawing and erases the line. It is safe to call more than once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	done := s.done
	if done == nil {
		s.mu.Unlock()
		return
	}
	s.stop()
	s.done = nil
	s.mu.Unlock()

	<-done
	if Enabled(s.out) {
		fmt.Fprint(s.out, "\r\033[2K")
	} else {
		fmt.Fprint(s.out, "\r")
	}
}

// Running reports whether the drawing goroutine is active.
func (s *Spinner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

func (s *Spinner) line(frame int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	glyph := s.frames[frame%len(s.frames)]
	if s.total > 0 && s.stage > 0 {
		return fmt.Sprintf("\r%s [%d/%d] %s", glyph, s.stage, s.total, s.label)
	}
	return fmt.Sprintf("\r%s %s", glyph, s.label)
}

func (s *Spinner) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(s.out, s.line(frame))
		}
	}
}

package progress

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// SpinnerSink shows a spinner while events ask for one and prints messages
// above it. Safe for concurrent use.
type SpinnerSink struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	out     io.Writer
}

// NewSpinnerSink creates a spinner sink writing to out
func NewSpinnerSink(out io.Writer) *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.HideCursor = false

	return &SpinnerSink{
		spinner: s,
		out:     out,
	}
}

// OnProgress starts or stops the spinner
func (s *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.Spinner {
		s.spinner.Suffix = " " + event.Message
		if !s.spinner.Active() {
			s.spinner.Start()
		}
	} else if s.spinner.Active() {
		s.spinner.Stop()
	}
}

// Info prints an info message
func (s *SpinnerSink) Info(message string) {
	s.Print(func(w io.Writer) {
		color.New(color.FgCyan).Fprintln(w, message)
	})
}

// Error prints an error message
func (s *SpinnerSink) Error(message string) {
	s.Print(func(w io.Writer) {
		color.New(color.FgRed).Fprintln(w, message)
	})
}

// Print runs fn with the spinner paused
func (s *SpinnerSink) Print(fn func(w io.Writer)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasActive := s.spinner.Active()
	if wasActive {
		s.spinner.Stop()
	}

	fn(s.out)

	if wasActive {
		s.spinner.Start()
	}
}

// Stop halts the spinner
func (s *SpinnerSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spinner.Active() {
		s.spinner.Stop()
	}
}

var _ usecase.ProgressSink = (*SpinnerSink)(nil)

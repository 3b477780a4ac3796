// Package console is the terminal face of a run: a progress bar, the
// end-of-run notification and failure list, and the language prompt.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/valpere/doctran/internal/i18n"
)

const barWidth = 40

// Sink renders run progress and results to a terminal.
type Sink struct {
	out io.Writer

	mu       sync.Mutex
	midLine  bool
	cyan     *color.Color
	green    *color.Color
	red      *color.Color
	yellow   *color.Color
	bold     *color.Color
	barColor *color.Color
}

// NewSink writes to out. With noColor set, no escape sequences are emitted.
func NewSink(out io.Writer, noColor bool) *Sink {
	s := &Sink{
		out:      out,
		cyan:     color.New(color.Bold, color.FgCyan),
		green:    color.New(color.FgGreen),
		red:      color.New(color.FgRed),
		yellow:   color.New(color.Bold, color.FgYellow),
		bold:     color.New(color.Bold),
		barColor: color.New(color.FgBlue),
	}
	if noColor {
		for _, c := range []*color.Color{s.cyan, s.green, s.red, s.yellow, s.bold, s.barColor} {
			c.DisableColor()
		}
	}
	return s
}

// Progress redraws the bar in place.
func (s *Sink) Progress(percent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent * barWidth / 100)
	bar := s.barColor.Sprint(strings.Repeat("█", filled)) + strings.Repeat("░", barWidth-filled)
	fmt.Fprintf(s.out, "\r%s [%s] %3.0f%%", s.cyan.Sprint("→"), bar, percent)
	s.midLine = true
	if percent >= 100 {
		fmt.Fprintln(s.out)
		s.midLine = false
	}
}

// Notify prints the completion message.
func (s *Sink) Notify(title, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLine()
	fmt.Fprintf(s.out, "%s %s\n", s.bold.Sprint(title+":"), message)
}

// Report lists the files that failed, or confirms there were none.
func (s *Sink) Report(failed []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLine()

	if len(failed) == 0 {
		fmt.Fprintln(s.out, s.green.Sprint("✓ "+i18n.T("Every file was translated.")))
		return
	}
	fmt.Fprintln(s.out, s.red.Sprint("✗ "+i18n.N("%d file could not be translated:", "%d files could not be translated:", len(failed), len(failed))))
	for _, f := range failed {
		fmt.Fprintf(s.out, "  - %s\n", f)
	}
}

// Cancelled tells the user the run stopped early.
func (s *Sink) Cancelled(processed, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLine()
	fmt.Fprintln(s.out, s.yellow.Sprint(i18n.N("Cancelled after %d of %d file.", "Cancelled after %d of %d files.", total, processed, total)))
}

// Interrupt reports the first Ctrl-C.
func (s *Sink) Interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLine()
	fmt.Fprintln(s.out, s.yellow.Sprint(i18n.T("Stopping after the current file. Press Ctrl-C again to abort.")))
}

// endLine terminates a half-drawn progress bar. Callers hold mu.
func (s *Sink) endLine() {
	if s.midLine {
		fmt.Fprintln(s.out)
		s.midLine = false
	}
}

// Pause ends the progress line so something else can write to the terminal.
func (s *Sink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLine()
}

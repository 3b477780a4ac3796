package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/valpere/doctran/internal/i18n"
)

// Pauser is told before the prompt writes, so a progress bar can end its line.
type Pauser interface {
	Pause()
}

// Prompter asks on the terminal for the language of text that could not be
// detected.
type Prompter struct {
	out   io.Writer
	pause Pauser
	label *color.Color

	start sync.Once
	in    io.Reader
	lines chan lineResult
}

type lineResult struct {
	text string
	err  error
}

// NewPrompter reads answers from in and writes questions to out. pause may
// be nil.
func NewPrompter(in io.Reader, out io.Writer, pause Pauser, noColor bool) *Prompter {
	label := color.New(color.Bold, color.FgYellow)
	if noColor {
		label.DisableColor()
	}
	return &Prompter{out: out, pause: pause, label: label, in: in}
}

// ChooseLanguage shows sample and asks for a language code. An empty answer
// declines. A cancelled ctx abandons the question.
func (p *Prompter) ChooseLanguage(ctx context.Context, sample string) (string, bool, error) {
	if p.pause != nil {
		p.pause.Pause()
	}

	fmt.Fprintln(p.out, p.label.Sprint(i18n.T("Could not detect the language of:")))
	for _, line := range strings.Split(sample, "\n") {
		fmt.Fprintf(p.out, "  │ %s\n", line)
	}
	fmt.Fprint(p.out, i18n.T("Source language code (e.g. en, de; empty to skip): "))

	answer, err := p.readLine(ctx)
	if err != nil {
		return "", false, err
	}
	lang := strings.ToLower(strings.TrimSpace(answer))
	if lang == "" {
		return "", false, nil
	}

	fmt.Fprint(p.out, i18n.T("Use %q for every undetected text in this run? [y/N]: ", lang))
	answer, err = p.readLine(ctx)
	if err != nil {
		// The language itself was given; only the memoization is lost.
		return lang, false, nil
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "s", "si", "sí", "т", "так":
		return lang, true, nil
	}
	return lang, false, nil
}

// readLine waits for the next input line. A single reader goroutine owns
// the input, so an abandoned question does not lose the next answer.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	p.start.Do(func() {
		p.lines = make(chan lineResult)
		go func() {
			sc := bufio.NewScanner(p.in)
			for sc.Scan() {
				p.lines <- lineResult{text: sc.Text()}
			}
			err := sc.Err()
			if err == nil {
				err = io.EOF
			}
			for {
				p.lines <- lineResult{err: err}
			}
		}()
	})

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	case r := <-p.lines:
		if r.err != nil {
			if errors.Is(r.err, io.EOF) {
				fmt.Fprintln(p.out)
			}
			return "", r.err
		}
		return r.text, nil
	}
}

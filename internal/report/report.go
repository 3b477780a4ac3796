// Package report writes the end-of-run failure report to a YAML file and
// fans sink calls out to several sinks.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/valpere/doctran/internal/document"
)

// Version is the report file format version.
const Version = 1

// Sink receives run progress and results.
type Sink interface {
	Progress(percent float64)
	Notify(title, message string)
	Report(failed []string)
}

// Meta describes the run a report belongs to.
type Meta struct {
	InputPath  string `yaml:"input"`
	OutputDir  string `yaml:"output"`
	SourceLang string `yaml:"source_lang"`
	TargetLang string `yaml:"target_lang"`
	Service    string `yaml:"service"`
}

// Summary is the document written to disk.
type Summary struct {
	Version     int       `yaml:"version"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Meta        `yaml:",inline"`
	Title       string   `yaml:"title,omitempty"`
	Message     string   `yaml:"message,omitempty"`
	FailedFiles []string `yaml:"failed_files"`
}

// File is a Sink that writes a Summary when the run reports its failures.
// A cancelled run never reports, so no file is written for it.
type File struct {
	path   string
	meta   Meta
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	title   string
	message string
	err     error
}

func NewFile(path string, meta Meta, logger *slog.Logger) *File {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &File{path: path, meta: meta, logger: logger, now: time.Now}
}

func (f *File) Progress(float64) {}

func (f *File) Notify(title, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title, f.message = title, message
}

func (f *File) Report(failed []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if failed == nil {
		failed = []string{}
	}
	s := Summary{
		Version:     Version,
		GeneratedAt: f.now().UTC(),
		Meta:        f.meta,
		Title:       f.title,
		Message:     f.message,
		FailedFiles: failed,
	}
	data, err := yaml.Marshal(&s)
	if err != nil {
		f.err = fmt.Errorf("encoding report: %w", err)
	} else if err := document.WriteText(f.path, string(data)); err != nil {
		f.err = fmt.Errorf("writing report %s: %w", f.path, err)
	} else {
		f.err = nil
	}
	if f.err != nil {
		f.logger.Error("failed to write report", "path", f.path, "error", f.err)
	}
}

// Err returns the error of the last Report, if any.
func (f *File) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Load reads a report written by File.
func Load(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var s Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// Tee forwards every call to each sink in order.
type Tee []Sink

func NewTee(sinks ...Sink) Tee {
	out := make(Tee, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (t Tee) Progress(percent float64) {
	for _, s := range t {
		s.Progress(percent)
	}
}

func (t Tee) Notify(title, message string) {
	for _, s := range t {
		s.Notify(title, message)
	}
}

func (t Tee) Report(failed []string) {
	for _, s := range t {
		s.Report(failed)
	}
}

package internal

import "time"

// AutoLanguage asks the resolver to detect the source language.
const AutoLanguage = "auto"

// TranslationJob is one discovered file waiting to be translated.
type TranslationJob struct {
	SourcePath   string `json:"source_path" yaml:"source_path"`
	RelativePath string `json:"relative_path" yaml:"relative_path"`
	SourceLang   string `json:"source_lang" yaml:"source_lang"`
	TargetLang   string `json:"target_lang" yaml:"target_lang"`
}

// FileOutcome is what the file processor reports back for a single job.
type FileOutcome struct {
	Job      TranslationJob `json:"job"`
	Success  bool           `json:"success"`
	Attempts int            `json:"attempts"`
	// OutputPath is empty when nothing was written (blank input or failure).
	OutputPath string `json:"output_path,omitempty"`
	Err        error  `json:"-"`
}

// RunStatus is the terminal state of a batch run.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunCancelled RunStatus = "cancelled"
)

// RunRecord is the persisted summary of one batch run.
type RunRecord struct {
	ID          string    `json:"id" yaml:"id"`
	InputPath   string    `json:"input_path" yaml:"input_path"`
	OutputDir   string    `json:"output_dir" yaml:"output_dir"`
	SourceLang  string    `json:"source_lang" yaml:"source_lang"`
	TargetLang  string    `json:"target_lang" yaml:"target_lang"`
	Service     string    `json:"service,omitempty" yaml:"service,omitempty"`
	Status      RunStatus `json:"status" yaml:"status"`
	Total       int       `json:"total" yaml:"total"`
	Processed   int       `json:"processed" yaml:"processed"`
	FailedFiles []string  `json:"failed_files" yaml:"failed_files"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time `json:"finished_at" yaml:"finished_at"`
}

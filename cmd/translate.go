/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/doctran/internal/console"
	"github.com/valpere/doctran/internal/detector"
	"github.com/valpere/doctran/internal/fileproc"
	"github.com/valpere/doctran/internal/i18n"
	"github.com/valpere/doctran/internal/orchestrator"
	"github.com/valpere/doctran/internal/report"
	"github.com/valpere/doctran/internal/resolver"
	"github.com/valpere/doctran/internal/runstate"
	"github.com/valpere/doctran/internal/store"
	"github.com/valpere/doctran/internal/translator"
	"github.com/valpere/doctran/internal/validator"
)

// ErrServiceUnavailable means the selected service failed its setup check.
var ErrServiceUnavailable = errors.New("translation service is not usable")

var (
	inputPath  string
	outputDir  string
	targetLang string
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a file or a folder of documents",
	Long: `Translate a single file or every .txt, .pdf and .docx file under a folder.
The folder structure is mirrored under the output folder. PDF text is
written as .txt; Word documents keep their formatting.

Each file is tried up to --max-attempts times. A file that still fails is
listed at the end of the run; the other files are not affected.

When the source language is "auto" and cannot be detected, you are asked
for it (disable with --no-prompt, or preset an answer with --fallback).

Available services:
  - google      Google Translate (requires credentials)
  - systran     Systran Translate (requires API key)
  - mymemory    MyMemory (free, 5000 chars/day)
  - ollama      Ollama LLM (self-hosted)
  - openrouter  OpenRouter LLM (requires API key)
  - openai      OpenAI or a compatible endpoint (requires API key)

Press Ctrl-C once to stop after the current file, twice to abort.`,
	RunE: runTranslate,
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	req := orchestrator.Request{
		InputPath:  inputPath,
		OutputDir:  outputDir,
		SourceLang: cfg.SourceLang,
		TargetLang: targetLang,
	}
	jobs, err := orchestrator.Plan(req)
	if err != nil {
		return err
	}

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}
	if err := svc.IsAvailable(cmd.Context()); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrServiceUnavailable, svc.Name(), err)
	}
	if cfg.Protect {
		svc = translator.WithPlaceholders(svc)
	}
	if cfg.Breaker.Enabled {
		svc = translator.WithBreaker(svc, cfg.Breaker.BreakerConfig, log)
	}

	var db *store.Store
	if !cfg.Cache.Disabled && cfg.Cache.DBPath != "" {
		db, err = openStore(cfg.Cache.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		// Outside the breaker, so cache hits are served while it is open.
		svc = translator.WithMemory(svc, db, log)
	}

	det := detector.NewWithDistance(cfg.DetectDistance)
	state := runstate.New()
	sink := console.NewSink(cmd.OutOrStdout(), cfg.Log.NoColor)

	var prompt resolver.Prompter
	if !cfg.NoPrompt {
		prompt = console.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), sink, cfg.Log.NoColor)
	}
	var check fileproc.Checker
	if cfg.ValidateOutput {
		check = validator.New(det)
	}

	proc := fileproc.New(svc, resolver.New(det, prompt, state, log), check, fileproc.Config{
		OutputRoot:     outputDir,
		MaxAttempts:    cfg.MaxAttempts,
		RetryDelay:     cfg.RetryDelay,
		AttemptTimeout: cfg.AttemptTimeout,
		ChunkSize:      cfg.ChunkSize,
		Service:        cfg.ServiceConfig(),
	}, log)

	sinks := []report.Sink{sink}
	var reportFile *report.File
	if cfg.Report != "" {
		reportFile = report.NewFile(cfg.Report, report.Meta{
			InputPath:  req.InputPath,
			OutputDir:  req.OutputDir,
			SourceLang: req.SourceLang,
			TargetLang: req.TargetLang,
			Service:    svc.Name(),
		}, log)
		sinks = append(sinks, reportFile)
	}

	orch := orchestrator.New(proc, state, report.NewTee(sinks...), orchestrator.Config{
		Fallback: cfg.Fallback,
		Service:  svc.Name(),
	}, log)
	if db != nil {
		orch.SetRecorder(db)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go handleInterrupts(ctx, orch, sink)

	fmt.Fprintln(cmd.OutOrStdout(), i18n.N("Translating %d file to %s with %s", "Translating %d files to %s with %s", len(jobs), len(jobs), jobs[0].TargetLang, svc.Name()))
	res, err := orch.Run(ctx, req, jobs)
	if err != nil {
		return err
	}
	log.Debug("run finished", "run_id", res.RunID, "status", res.Status.String())

	if res.Status == orchestrator.StatusCancelled {
		sink.Cancelled(res.Processed, res.Total)
		return nil
	}
	if reportFile != nil {
		if err := reportFile.Err(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), i18n.T("Report written to %s", cfg.Report))
	}
	return nil
}

// handleInterrupts turns the first Ctrl-C into a cancellation request. A
// second one, while the current file is still running, exits at once.
func handleInterrupts(ctx context.Context, orch *orchestrator.Orchestrator, sink *console.Sink) {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigs:
			if !orch.Cancel() {
				os.Exit(130)
			}
			sink.Interrupt()
		}
	}
}

func init() {
	rootCmd.AddCommand(translateCmd)

	f := translateCmd.Flags()
	f.StringVarP(&inputPath, "input", "i", "", "Input file or folder to translate")
	f.StringVarP(&outputDir, "output", "o", "", "Output folder")
	f.StringVarP(&targetLang, "target", "t", "", "Target language code")

	f.StringP("source", "s", "auto", "Source language code, or auto to detect")
	f.String("service", "google", "Translation service to use")
	f.Int("max-attempts", fileproc.DefaultMaxAttempts, "Attempts per file including the first")
	f.Duration("retry-delay", fileproc.DefaultRetryDelay, "Pause between attempts")
	f.Duration("attempt-timeout", fileproc.DefaultAttemptTimeout, "Time limit for one translation call (0 disables)")
	f.Int("chunk-size", 4500, "Longest text, in characters, sent in one request")
	f.String("fallback", "", "Language to use whenever detection fails, without asking")
	f.Float64("detect-distance", 0.1, "Refuse to guess when the two likeliest languages are closer than this (0 to 0.99)")
	f.Bool("no-prompt", false, "Never ask for a language; undetectable files fail")
	f.Bool("validate", false, "Check that the output is in the target language")
	f.Bool("protect", false, "Keep code, markup, links and template variables out of the translation")
	f.Bool("breaker", false, "Stop calling a failing service for a while")
	f.String("db", "./data/doctran.db", "Database path for translation memory and run history")
	f.Bool("no-cache", false, "Disable translation memory and run history")
	f.String("report", "", "Write a YAML report of the run to this file")

	f.StringP("credentials", "c", "", "Path to Google Cloud credentials")
	f.StringP("project", "p", "", "Google Cloud Project ID")
	f.String("systran-key", "", "Systran API key")
	f.String("mymemory-email", "", "MyMemory email (for higher limits)")
	f.String("ollama-url", "http://localhost:11434", "Ollama base URL")
	f.String("ollama-model", "", "Ollama model name")
	f.String("openrouter-key", "", "OpenRouter API key")
	f.String("openrouter-model", "", "OpenRouter model name")
	f.String("openai-key", "", "OpenAI API key")
	f.String("openai-url", "", "OpenAI-compatible base URL")
	f.String("openai-model", "", "OpenAI model name")

	for key, flag := range map[string]string{
		"source":                       "source",
		"service":                      "service",
		"max_attempts":                 "max-attempts",
		"retry_delay":                  "retry-delay",
		"attempt_timeout":              "attempt-timeout",
		"chunk_size":                   "chunk-size",
		"fallback":                     "fallback",
		"detect_distance":              "detect-distance",
		"no_prompt":                    "no-prompt",
		"validate":                     "validate",
		"protect":                      "protect",
		"breaker.enabled":              "breaker",
		"cache.db":                     "db",
		"cache.disabled":               "no-cache",
		"report":                       "report",
		"providers.google.credentials": "credentials",
		"providers.google.project_id":  "project",
		"providers.systran.api_key":    "systran-key",
		"providers.mymemory.email":     "mymemory-email",
		"providers.ollama.base_url":    "ollama-url",
		"providers.ollama.model":       "ollama-model",
		"providers.openrouter.api_key": "openrouter-key",
		"providers.openrouter.model":   "openrouter-model",
		"providers.openai.api_key":     "openai-key",
		"providers.openai.base_url":    "openai-url",
		"providers.openai.model":       "openai-model",
	} {
		viper.BindPFlag(key, f.Lookup(flag))
	}
}

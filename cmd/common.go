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
	"fmt"
	"os"
	"path/filepath"

	"github.com/valpere/doctran/internal/config"
	"github.com/valpere/doctran/internal/store"
	"github.com/valpere/doctran/internal/translator"
)

// buildService constructs the configured translation service.
func buildService(cfg *config.Config) (translator.TranslationService, error) {
	p := cfg.Providers
	switch cfg.Service {
	case "google":
		return translator.NewGoogleService(), nil
	case "systran":
		return translator.NewSystranService(p.Systran.APIKey), nil
	case "mymemory":
		return translator.NewMyMemoryService(p.MyMemory.Email), nil
	case "ollama":
		return translator.NewOllamaTranslator(p.Ollama.BaseURL, p.Ollama.Model), nil
	case "openrouter":
		return translator.NewOpenRouterService(p.OpenRouter.APIKey, p.OpenRouter.BaseURL, p.OpenRouter.Model), nil
	case "openai":
		return translator.NewOpenAIService(p.OpenAI.APIKey, p.OpenAI.BaseURL, p.OpenAI.Model), nil
	default:
		return nil, fmt.Errorf("unknown service: %s", cfg.Service)
	}
}

// openStore opens the SQLite database, creating its folder first.
func openStore(dbPath string) (*store.Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

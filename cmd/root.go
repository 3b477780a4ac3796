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
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/doctran/internal/config"
	"github.com/valpere/doctran/internal/i18n"
	"github.com/valpere/doctran/internal/logger"
)

var version = "0.3.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "doctran",
	Short: "Batch document translator",
	Long: `A CLI application that translates a folder of documents (.txt, .pdf, .docx)
into another language, one file at a time, with retries per file and a
report of the files that could not be translated.

Supported services: Google Translate, MyMemory, Systran, Ollama, OpenRouter, OpenAI

Use "doctran translate --help" for translation options.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.doctran.yaml or ./.doctran.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug details to stderr")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable coloured console output")
	rootCmd.PersistentFlags().String("ui-lang", "", "Language of console messages, e.g. es (default from the locale)")

	viper.BindPFlag("log.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log.no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("ui_lang", rootCmd.PersistentFlags().Lookup("ui-lang"))
}

func initConfig() {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".doctran")
	}

	config.ConfigureEnv(v)

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	} else if cfgFile != "" {
		// An explicitly named file that cannot be read is an error, not a default.
		cobra.CheckErr(fmt.Errorf("failed to read config %s: %w", cfgFile, err))
	}
}

// loadConfig returns the merged configuration and a logger built from it,
// and loads the message catalog.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	i18n.Init(cfg.UILang)

	format, err := logger.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	level := slog.LevelWarn
	if cfg.Log.Verbose {
		level = slog.LevelDebug
	}
	log := logger.New(logger.WithLevel(level), logger.WithFormat(format), logger.WithOutput(os.Stderr))
	return cfg, log, nil
}

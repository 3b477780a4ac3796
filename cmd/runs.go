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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/doctran/internal/store"
)

var (
	runsDBPath string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show the history of translation runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(runsDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), runsLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tLANG\tSERVICE\tFILES\tFAILED\tINPUT")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s→%s\t%s\t%d/%d\t%d\t%s\n",
				r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status,
				r.SourceLang, r.TargetLang, r.Service,
				r.Processed, r.Total, len(r.FailedFiles), r.InputPath)
		}
		return w.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run and the files that failed in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(runsDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		r, err := db.GetRun(context.Background(), args[0])
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no run with ID %s", args[0])
			}
			return fmt.Errorf("failed to load run: %w", err)
		}

		fmt.Printf("Run:       %s\n", r.ID)
		fmt.Printf("Status:    %s\n", r.Status)
		fmt.Printf("Input:     %s\n", r.InputPath)
		fmt.Printf("Output:    %s\n", r.OutputDir)
		fmt.Printf("Languages: %s → %s\n", r.SourceLang, r.TargetLang)
		fmt.Printf("Service:   %s\n", r.Service)
		fmt.Printf("Files:     %d of %d processed\n", r.Processed, r.Total)
		fmt.Printf("Started:   %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Duration:  %s\n", r.FinishedAt.Sub(r.StartedAt).Round(1e6))
		if len(r.FailedFiles) == 0 {
			fmt.Println("Failed:    none")
			return nil
		}
		fmt.Printf("Failed:    %d\n", len(r.FailedFiles))
		for _, f := range r.FailedFiles {
			fmt.Printf("  - %s\n", f)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.PersistentFlags().StringVar(&runsDBPath, "db", "./data/doctran.db", "Database path")
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum number of runs to show")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}

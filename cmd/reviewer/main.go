package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/bootstrap"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/config"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/observability/logging"
)

// app is built once per invocation by the root command.
var app *bootstrap.App

var rootCmd = &cobra.Command{
	Use:   "reviewer",
	Short: "Review course syllabi against the course rubric",
	Long: `reviewer submits syllabus files to a judgment service, validates the
returned reviews and keeps one result file per department.

Runs are resumable: documents already present in a result file are skipped.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := logging.New(os.Stderr, "reviewer", cfg.LogLevel).With("run_id", uuid.NewString())

		app, err = bootstrap.New(cfg, logger)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app == nil {
			return nil
		}
		return app.Close()
	},
}

func init() {
	rootCmd.AddCommand(departmentCmd, programCmd, allCmd, missingCmd, summaryCmd, exportCmd)
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "reviews.xlsx", "path of the XLSX file to write")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if app != nil {
			_ = app.Close()
		}
		os.Exit(1)
	}
}

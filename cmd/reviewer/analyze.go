package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
)

var departmentCmd = &cobra.Command{
	Use:   "department <DEPT>",
	Short: "Analyze every syllabus of one department",
	Args:  cobra.ExactArgs(1),
	RunE:  runDepartment,
}

var programCmd = &cobra.Command{
	Use:   "program <NAME>",
	Short: "Analyze the syllabi of a program's courses",
	Long: `Analyze the syllabi whose course code belongs to the named program.

Results are written to the per-department result files, one department at a
time in sorted order.`,
	Args: cobra.ExactArgs(1),
	RunE: runProgram,
}

var allCmd = &cobra.Command{
	Use:   "all [DEPT...]",
	Short: "Analyze all departments, or only the listed ones",
	RunE:  runAll,
}

func runDepartment(cmd *cobra.Command, args []string) error {
	dept := strings.ToUpper(strings.TrimSpace(args[0]))
	out := cmd.OutOrStdout()
	printer := newProgressPrinter(out, departmentHeader)

	analyzer, err := app.Analyzer(cmd.Context(), printer.Handle)
	if err != nil {
		return err
	}
	result, err := analyzer.AnalyzeDepartment(cmd.Context(), dept)
	defer writeMetrics()
	if err != nil {
		return err
	}

	printBatches(out, []domain.BatchResult{result})
	return nil
}

func runProgram(cmd *cobra.Command, args []string) error {
	program := args[0]
	out := cmd.OutOrStdout()
	printer := newProgressPrinter(out, func(ev domain.ItemEvent) string {
		return fmt.Sprintf("Processing %s (%d files for %s)", ev.Scope, ev.Total, program)
	})

	analyzer, err := app.Analyzer(cmd.Context(), printer.Handle)
	if err != nil {
		return err
	}
	result, err := analyzer.AnalyzeProgram(cmd.Context(), program)
	defer writeMetrics()
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return programNotFound(cmd, program, err)
		}
		return err
	}

	if len(result.Departments) == 0 {
		fmt.Fprintf(out, "No syllabi files found for program '%s'\n", program)
		return nil
	}
	for _, batch := range result.Departments {
		printTotal(out, batch)
	}
	fmt.Fprintf(out, "\nDone. %d total results across %d departments for '%s'\n",
		result.TotalRecords(), len(result.Departments), program)
	return nil
}

func runAll(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	printer := newProgressPrinter(out, departmentHeader)

	analyzer, err := app.Analyzer(cmd.Context(), printer.Handle)
	if err != nil {
		return err
	}
	results, err := analyzer.AnalyzeAll(cmd.Context(), args...)
	defer writeMetrics()
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Fprintf(out, "No syllabi files found in %s\n", app.Config.SyllabiDir)
		return nil
	}
	printBatches(out, results)
	return nil
}

// printBatches reports department totals. Departments without files never
// produced a progress event, so their header is printed here.
func printBatches(w io.Writer, results []domain.BatchResult) {
	for _, batch := range results {
		if batch.Discovered == 0 {
			fmt.Fprintln(w, "Processing department: "+batch.Scope)
			fmt.Fprintf(w, "No supported files found for department %s\n", batch.Scope)
			continue
		}
		printTotal(w, batch)
	}
}

func printTotal(w io.Writer, batch domain.BatchResult) {
	fmt.Fprintf(w, "  %d processed of %d discovered (%d skipped, %d errors)\n",
		batch.Processed(), batch.Discovered, batch.Skipped, batch.Failed)
	fmt.Fprintf(w, "  %d total results for %s\n", batch.TotalRecords, batch.Scope)
}

func departmentHeader(ev domain.ItemEvent) string {
	return "Processing department: " + ev.Scope
}

// programNotFound lists the known programs when a name is unknown.
// A missing or unreadable catalog is reported as is.
func programNotFound(cmd *cobra.Command, program string, err error) error {
	programs, listErr := app.Catalog.Programs(cmd.Context())
	if listErr != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Program not found: %s\n", program)
	fmt.Fprintf(out, "Available programs: %s\n", strings.Join(programs, ", "))
	return fmt.Errorf("unknown program %q", program)
}

func writeMetrics() {
	if err := app.WriteMetrics(); err != nil {
		app.Logger.Warn("metrics_write_failed", "error", err)
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

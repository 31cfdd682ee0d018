package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/export/xlsx"
)

var exportPath string

var missingCmd = &cobra.Command{
	Use:   "missing <PROGRAM>",
	Short: "List program courses that have no syllabus on disk",
	Args:  cobra.ExactArgs(1),
	RunE:  runMissing,
}

var summaryCmd = &cobra.Command{
	Use:   "summary [SCOPE]",
	Short: "Show stored result counts, or the rubric summary of one scope",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSummary,
}

var exportCmd = &cobra.Command{
	Use:   "export [SCOPE...]",
	Short: "Export stored reviews and error records to an XLSX workbook",
	RunE:  runExport,
}

func runMissing(cmd *cobra.Command, args []string) error {
	program := args[0]
	out := cmd.OutOrStdout()

	report, location, err := app.MissingUC.ReportMissing(cmd.Context(), program)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return programNotFound(cmd, program, err)
		}
		return err
	}

	fmt.Fprintf(out, "Program '%s': %d courses, %d found, %d missing\n",
		report.Program, report.TotalCourses, report.Found, report.MissingCount)
	for _, course := range report.MissingCourses {
		fmt.Fprintf(out, "  %s\n", course)
	}
	fmt.Fprintf(out, "Results saved to %s\n", location)
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		scopes, err := app.ReviewsUC.Scopes(cmd.Context())
		if err != nil {
			return err
		}
		if len(scopes) == 0 {
			fmt.Fprintf(out, "No results in %s\n", app.Config.ResultsDir)
			return nil
		}
		rows := [][]string{{"SCOPE", "REVIEWS", "ERRORS"}}
		for _, s := range scopes {
			rows = append(rows, []string{s.Scope, strconv.Itoa(s.Reviews), strconv.Itoa(s.Errors)})
		}
		writeTable(out, rows)
		return nil
	}

	summary, err := app.ReviewsUC.Summary(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	writeSummary(out, summary)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := xlsx.NewExporter(app.ReviewsUC).ExportFile(cmd.Context(), exportPath, args...); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", exportPath)
	return nil
}

func writeSummary(w io.Writer, summary domain.ScopeSummary) {
	fmt.Fprintf(w, "%s: %d reviews, %d errors\n", summary.Scope, summary.Reviews, summary.Errors)

	decisions := make([]string, 0, len(domain.Decisions))
	for _, d := range domain.Decisions {
		decisions = append(decisions, fmt.Sprintf("%s=%d", d, summary.Decisions[d]))
	}
	fmt.Fprintf(w, "Decisions: %s\n\n", strings.Join(decisions, " "))

	rows := [][]string{{"SECTION", "CRITERION", "MET", "SHARE"}}
	for _, section := range summary.Sections {
		for i, c := range section.Criteria {
			label := ""
			if i == 0 {
				label = section.Label
				if section.Exclusion {
					label += " (flagged)"
				}
			}
			rows = append(rows, []string{label, c.Key, strconv.Itoa(c.Met), share(c.Met, summary.Reviews)})
		}
	}
	writeTable(w, rows)
}

func share(n, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", 100*float64(n)/float64(total))
}

// writeTable pads columns by display width so labels with wide runes line up.
func writeTable(w io.Writer, rows [][]string) {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	for _, row := range rows {
		var sb strings.Builder
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			if i == len(row)-1 {
				sb.WriteString(cell)
				continue
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		fmt.Fprintln(w, sb.String())
	}
}

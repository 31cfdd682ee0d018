// Package xlsx exports persisted results as a spreadsheet for committee review.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/ports"
)

const (
	reviewsSheet = "Reviews"
	errorsSheet  = "Errors"
)

type Exporter struct {
	reader ports.ReviewReader
}

func NewExporter(reader ports.ReviewReader) *Exporter {
	return &Exporter{reader: reader}
}

// ExportFile writes the workbook to path. See Export.
func (e *Exporter) ExportFile(ctx context.Context, path string, scopes ...string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := e.Export(ctx, out, scopes...); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Export writes one row per review to the Reviews sheet and one row per
// error record to the Errors sheet. With no scopes every stored scope is
// exported.
func (e *Exporter) Export(ctx context.Context, w io.Writer, scopes ...string) error {
	if len(scopes) == 0 {
		overview, err := e.reader.Scopes(ctx)
		if err != nil {
			return err
		}
		for _, s := range overview {
			scopes = append(scopes, s.Scope)
		}
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", reviewsSheet); err != nil {
		return fmt.Errorf("name reviews sheet: %w", err)
	}
	if _, err := f.NewSheet(errorsSheet); err != nil {
		return fmt.Errorf("create errors sheet: %w", err)
	}

	if err := setRow(f, reviewsSheet, 1, reviewHeader()); err != nil {
		return err
	}
	if err := setRow(f, errorsSheet, 1, []any{"Scope", "Source File", "Error"}); err != nil {
		return err
	}

	reviewRow, errorRow := 2, 2
	for _, scope := range scopes {
		reviews, err := e.reader.Records(ctx, scope)
		if err != nil {
			return err
		}
		for _, rec := range reviews {
			if err := setRow(f, reviewsSheet, reviewRow, reviewCells(scope, rec)); err != nil {
				return err
			}
			reviewRow++
		}

		failures, err := e.reader.Errors(ctx, scope)
		if err != nil {
			return err
		}
		for _, rec := range failures {
			if err := setRow(f, errorsSheet, errorRow, []any{scope, rec.SourceFile, rec.Error}); err != nil {
				return err
			}
			errorRow++
		}
	}

	for _, sheet := range []string{reviewsSheet, errorsSheet} {
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return fmt.Errorf("freeze header of %s: %w", sheet, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func reviewHeader() []any {
	header := []any{"Scope", "Source File", "Course Number", "Course Title", "Department", "College", "Review Date", "Decision", "Rationale"}
	for _, section := range domain.RubricSections {
		for _, key := range section.Criteria {
			header = append(header, section.Key+"."+key)
		}
	}
	return header
}

func reviewCells(scope string, rec domain.Record) []any {
	info := rec.Review.CourseInformation
	analysis := rec.Review.CourseAnalysis
	cells := []any{
		scope,
		rec.SourceFile,
		str(info.CourseNumber),
		str(info.CourseTitle),
		str(info.Department),
		str(info.College),
		str(info.ReviewDate),
		string(analysis.ReviewDecision.Decision),
		analysis.ReviewDecision.Rationale,
	}
	for _, section := range domain.RubricSections {
		for _, c := range analysis.Section(section.Key) {
			cells = append(cells, c.Score)
		}
	}
	return cells
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

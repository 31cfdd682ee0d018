package usecase

import (
	"context"
	"fmt"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/ports"
)

// MissingCoursesUseCase reports program courses with no syllabus on disk. It
// never touches the Result Store.
type MissingCoursesUseCase struct {
	catalog    ports.ProgramCatalog
	discoverer ports.DocumentDiscoverer
	writer     ports.MissingReportWriter
}

func NewMissingCoursesUseCase(
	catalog ports.ProgramCatalog,
	discoverer ports.DocumentDiscoverer,
	writer ports.MissingReportWriter,
) *MissingCoursesUseCase {
	return &MissingCoursesUseCase{
		catalog:    catalog,
		discoverer: discoverer,
		writer:     writer,
	}
}

// ReportMissing computes the report and persists it. The returned string is
// where the report was written.
func (uc *MissingCoursesUseCase) ReportMissing(ctx context.Context, program string) (domain.MissingReport, string, error) {
	report, err := uc.Compute(ctx, program)
	if err != nil {
		return domain.MissingReport{}, "", err
	}

	location, err := uc.writer.WriteMissingReport(ctx, report)
	if err != nil {
		return report, "", fmt.Errorf("write missing report: %w", err)
	}
	return report, location, nil
}

// Compute builds the report without persisting it.
func (uc *MissingCoursesUseCase) Compute(ctx context.Context, program string) (domain.MissingReport, error) {
	courses, err := uc.catalog.Courses(ctx, program)
	if err != nil {
		return domain.MissingReport{}, err
	}

	docs, err := uc.discoverer.Discover(ctx, domain.ProgramScope(program, courses))
	if err != nil {
		return domain.MissingReport{}, fmt.Errorf("discover program %s: %w", program, err)
	}

	present := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		present[domain.CourseCodeOf(doc.Name)] = struct{}{}
	}
	return domain.BuildMissingReport(program, courses, present), nil
}

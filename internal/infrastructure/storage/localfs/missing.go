package localfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
)

// MissingReports writes one JSON report per program.
type MissingReports struct {
	dir string
}

func NewMissingReports(dir string) *MissingReports {
	if dir == "" {
		dir = "./data/missing"
	}
	return &MissingReports{dir: dir}
}

func (m *MissingReports) WriteMissingReport(_ context.Context, report domain.MissingReport) (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", domain.WrapError(domain.ErrStore, "create missing dir", err)
	}

	data, err := encodeIndented(report)
	if err != nil {
		return "", domain.WrapError(domain.ErrStore, "encode missing report", err)
	}

	path := filepath.Join(m.dir, reportFileName(report.Program))
	if err := writeFileAtomic(path, data); err != nil {
		return "", domain.WrapError(domain.ErrStore, "write missing report", err)
	}
	return path, nil
}

func reportFileName(program string) string {
	slug := strings.ReplaceAll(program, " ", "_")
	slug = strings.NewReplacer("/", "_", `\`, "_").Replace(slug)
	return slug + ".json"
}

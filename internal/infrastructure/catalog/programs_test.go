package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
)

func TestProgramFileJSONKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.json")
	raw := `{"Zeta Program": ["POL 10100"], "Alpha Program": ["ABE 201", "XYZ 999"]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	catalog := NewProgramFile(path)
	names, err := catalog.Programs(context.Background())
	if err != nil {
		t.Fatalf("Programs() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Zeta Program", "Alpha Program"}, names); diff != "" {
		t.Fatalf("unexpected program order (-want +got):\n%s", diff)
	}

	courses, err := catalog.Courses(context.Background(), "Alpha Program")
	if err != nil {
		t.Fatalf("Courses() error = %v", err)
	}
	if diff := cmp.Diff([]string{"ABE 201", "XYZ 999"}, courses); diff != "" {
		t.Fatalf("unexpected courses (-want +got):\n%s", diff)
	}
}

func TestProgramFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.yaml")
	raw := "Honors:\n  - ABE 201\n  - POL 10100\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	courses, err := NewProgramFile(path).Courses(context.Background(), "Honors")
	if err != nil {
		t.Fatalf("Courses() error = %v", err)
	}
	if len(courses) != 2 || courses[1] != "POL 10100" {
		t.Fatalf("unexpected courses: %v", courses)
	}
}

func TestProgramFileUnknownProgramListsAvailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.json")
	if err := os.WriteFile(path, []byte(`{"Honors": []}`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := NewProgramFile(path).Courses(context.Background(), "Nope")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !strings.Contains(err.Error(), "available: Honors") {
		t.Fatalf("expected available programs in %v", err)
	}
}

func TestProgramFileMissingAndMalformed(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewProgramFile(filepath.Join(dir, "none.json")).Programs(context.Background()); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte(`["not", "a", "mapping"]`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := NewProgramFile(path).Programs(context.Background()); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

package domain

import (
	"path/filepath"
	"strings"
)

// DocumentFormat is how a syllabus is submitted for judgment.
type DocumentFormat string

const (
	// FormatPDF documents are submitted verbatim as page images.
	FormatPDF DocumentFormat = "pdf"
	// FormatDOCX documents are converted to plain text first.
	FormatDOCX DocumentFormat = "docx"
)

// SupportedExtensions maps lowercase file extensions to formats.
var SupportedExtensions = map[string]DocumentFormat{
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
}

// FormatOf returns the format for a file name, case-insensitively.
func FormatOf(name string) (DocumentFormat, bool) {
	format, ok := SupportedExtensions[strings.ToLower(filepath.Ext(name))]
	return format, ok
}

// InputDocument is a syllabus file found under the syllabi root.
type InputDocument struct {
	// Name is the base file name, e.g. "POL10100_Spring2026_X.pdf".
	Name string `json:"name"`
	// RelPath is the slash-separated path relative to the root. It is the
	// document identity used as the record's source file.
	RelPath string `json:"rel_path"`
	// Path is the absolute or root-joined path used to open the file.
	Path   string         `json:"path"`
	Format DocumentFormat `json:"format"`
}

// Key is the identity stored in `_source_file`.
func (d InputDocument) Key() string {
	return d.RelPath
}

// Department returns the document's department code, if any.
func (d InputDocument) Department() (string, bool) {
	return DepartmentOf(d.Name)
}

// ScopeKind selects which documents a discovery pass returns.
type ScopeKind string

const (
	ScopeDepartment ScopeKind = "department"
	ScopeProgram    ScopeKind = "program"
	ScopeAll        ScopeKind = "all"
)

// Scope is a unit of batching.
type Scope struct {
	Kind ScopeKind
	// Department is set for department scopes.
	Department string
	// Program and Courses are set for program scopes.
	Program string
	Courses []string
}

func DepartmentScope(dept string) Scope {
	return Scope{Kind: ScopeDepartment, Department: dept}
}

func ProgramScope(name string, courses []string) Scope {
	return Scope{Kind: ScopeProgram, Program: name, Courses: courses}
}

func AllScope() Scope {
	return Scope{Kind: ScopeAll}
}

// Matcher returns a predicate reporting whether a file name belongs to the scope.
func (s Scope) Matcher() func(name string) bool {
	switch s.Kind {
	case ScopeDepartment:
		return func(name string) bool {
			dept, ok := DepartmentOf(name)
			return ok && dept == s.Department
		}
	case ScopeProgram:
		// Catalog courses are normalized; file codes are only uppercased, so an
		// unpadded "ABE201_x.pdf" is not a syllabus for "ABE 20100".
		keys := CourseKeySet(s.Courses)
		return func(name string) bool {
			_, ok := keys[CourseCodeOf(name)]
			return ok
		}
	case ScopeAll:
		return func(string) bool { return true }
	default:
		return func(string) bool { return false }
	}
}

func (s Scope) String() string {
	switch s.Kind {
	case ScopeDepartment:
		return "department " + s.Department
	case ScopeProgram:
		return "program " + s.Program
	default:
		return string(s.Kind)
	}
}

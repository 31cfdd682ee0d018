package domain

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// CourseNumberWidth is the digit width of a canonical course key.
const CourseNumberWidth = 5

var (
	courseKeyPattern  = regexp.MustCompile(`^([A-Z]+)([0-9]+)$`)
	departmentPattern = regexp.MustCompile(`^([A-Z]+)[0-9]`)
)

// NormalizeCourse maps a free-form course identifier to its canonical key.
// "ABE 201" and "ABE20100" both become "ABE20100". Identifiers that are not
// letters followed by digits come back space-stripped and uppercased.
func NormalizeCourse(raw string) string {
	code := strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw))

	m := courseKeyPattern.FindStringSubmatch(code)
	if m == nil {
		return code
	}
	digits := m[2]
	if len(digits) < CourseNumberWidth {
		digits += strings.Repeat("0", CourseNumberWidth-len(digits))
	}
	return m[1] + digits
}

// DepartmentOf extracts the leading uppercase department code of a syllabus
// file name, e.g. "POL10100_Spring2026_X.pdf" -> "POL".
func DepartmentOf(name string) (string, bool) {
	m := departmentPattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CourseCodeOf returns the identifier segment of a file name: the stem up to
// the first underscore, uppercased.
func CourseCodeOf(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if idx := strings.Index(stem, "_"); idx >= 0 {
		stem = stem[:idx]
	}
	return strings.ToUpper(stem)
}

// CourseKeySet builds the set of canonical keys for a course list.
func CourseKeySet(courses []string) map[string]struct{} {
	out := make(map[string]struct{}, len(courses))
	for _, c := range courses {
		out[NormalizeCourse(c)] = struct{}{}
	}
	return out
}

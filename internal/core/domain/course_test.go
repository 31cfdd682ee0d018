package domain

import "testing"

func TestNormalizeCourse(t *testing.T) {
	cases := map[string]string{
		"ABE 201":     "ABE20100",
		"POL 10100":   "POL10100",
		"cs18000":     "CS18000",
		"  ma 16 1 ":  "MA16100",
		"ENGL 106001": "ENGL106001",
		"HONR 399H":   "HONR399H",
		"":            "",
		"\tbio\n110":  "BIO11000",
	}
	for raw, want := range cases {
		if got := NormalizeCourse(raw); got != want {
			t.Fatalf("NormalizeCourse(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeCourseIsIdempotent(t *testing.T) {
	for _, raw := range []string{"ABE 201", "POL 10100", "cs18000", "HONR 399H", "x", "12 34"} {
		once := NormalizeCourse(raw)
		if twice := NormalizeCourse(once); twice != once {
			t.Fatalf("NormalizeCourse not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestDepartmentOf(t *testing.T) {
	dept, ok := DepartmentOf("POL10100_Spring2026_X.pdf")
	if !ok || dept != "POL" {
		t.Fatalf("DepartmentOf() = %q, %v, want POL, true", dept, ok)
	}
	if dept, ok := DepartmentOf("readme.txt"); ok {
		t.Fatalf("expected no department for readme.txt, got %q", dept)
	}
	if _, ok := DepartmentOf("pol10100.pdf"); ok {
		t.Fatalf("lowercase prefix must not yield a department")
	}
	if _, ok := DepartmentOf("POL_notes.pdf"); ok {
		t.Fatalf("prefix without a digit must not yield a department")
	}
}

func TestCourseCodeOf(t *testing.T) {
	if got := CourseCodeOf("pol10100_Spring2026_X.pdf"); got != "POL10100" {
		t.Fatalf("CourseCodeOf() = %q", got)
	}
	if got := CourseCodeOf("ABE20100.docx"); got != "ABE20100" {
		t.Fatalf("CourseCodeOf() = %q", got)
	}
}

package domain

import "testing"

func TestFormatOf(t *testing.T) {
	cases := []struct {
		name   string
		format DocumentFormat
		ok     bool
	}{
		{"POL10100.pdf", FormatPDF, true},
		{"POL10100.PDF", FormatPDF, true},
		{"ABE20100_Fall.DocX", FormatDOCX, true},
		{"ABE20100.doc", "", false},
		{"notes", "", false},
	}
	for _, tc := range cases {
		format, ok := FormatOf(tc.name)
		if format != tc.format || ok != tc.ok {
			t.Fatalf("FormatOf(%q) = %q, %v, want %q, %v", tc.name, format, ok, tc.format, tc.ok)
		}
	}
}

func TestScopeMatcher(t *testing.T) {
	dept := DepartmentScope("POL").Matcher()
	if !dept("POL10100_Spring2026_X.pdf") || dept("POLS10100.pdf") || dept("ABE20100.pdf") {
		t.Fatalf("department matcher mismatch")
	}

	program := ProgramScope("Honors", []string{"ABE 201", "pol 10100"}).Matcher()
	if !program("ABE20100_Fall2025.pdf") {
		t.Fatalf("expected padded course to match program")
	}
	if !program("POL10100.docx") {
		t.Fatalf("expected POL10100 to match program")
	}
	if program("ABE20200.pdf") {
		t.Fatalf("unexpected match for course outside program")
	}
	if ProgramScope("P", []string{"ABE 20100"}).Matcher()("ABE201_x.pdf") {
		t.Fatalf("unpadded file code must not match a padded course")
	}

	if !AllScope().Matcher()("anything.pdf") {
		t.Fatalf("all scope must match everything")
	}
}

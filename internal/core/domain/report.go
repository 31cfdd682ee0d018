package domain

import "sort"

// BatchResult summarizes one scope run.
type BatchResult struct {
	Scope        string `json:"scope"`
	Discovered   int    `json:"discovered"`
	Skipped      int    `json:"skipped"`
	Reviewed     int    `json:"reviewed"`
	Failed       int    `json:"failed"`
	TotalRecords int    `json:"total_records"`
}

// Processed is the number of items committed during the run.
func (b BatchResult) Processed() int {
	return b.Reviewed + b.Failed
}

// ProgramResult aggregates the department runs of a program.
type ProgramResult struct {
	Program     string        `json:"program"`
	Departments []BatchResult `json:"departments"`
}

func (p ProgramResult) TotalRecords() int {
	total := 0
	for _, d := range p.Departments {
		total += d.TotalRecords
	}
	return total
}

// MissingReport lists program courses with no syllabus on disk.
type MissingReport struct {
	Program        string   `json:"program"`
	TotalCourses   int      `json:"total_courses"`
	Found          int      `json:"found"`
	MissingCount   int      `json:"missing_count"`
	MissingCourses []string `json:"missing_courses"`
}

// BuildMissingReport computes which courses have no canonical key among present.
// Missing courses keep their raw spelling and are sorted.
func BuildMissingReport(program string, courses []string, present map[string]struct{}) MissingReport {
	missing := make([]string, 0)
	for _, c := range courses {
		if _, ok := present[NormalizeCourse(c)]; !ok {
			missing = append(missing, c)
		}
	}
	sort.Strings(missing)

	return MissingReport{
		Program:        program,
		TotalCourses:   len(courses),
		Found:          len(courses) - len(missing),
		MissingCount:   len(missing),
		MissingCourses: missing,
	}
}

// CriterionSummary counts how many reviews scored a criterion 1.
type CriterionSummary struct {
	Key string `json:"key"`
	Met int    `json:"met"`
}

// SectionSummary aggregates one rubric section over a set of reviews.
type SectionSummary struct {
	Key       string             `json:"key"`
	Label     string             `json:"label"`
	Exclusion bool               `json:"exclusion"`
	Criteria  []CriterionSummary `json:"criteria"`
}

// ScopeSummary is the analytical view of one scope. Error records are only counted.
type ScopeSummary struct {
	Scope     string           `json:"scope"`
	Reviews   int              `json:"reviews"`
	Errors    int              `json:"errors"`
	Decisions map[Decision]int `json:"decisions"`
	Sections  []SectionSummary `json:"sections"`
}

// Summarize builds a ScopeSummary from stored records.
func Summarize(scope string, records []Record) ScopeSummary {
	reviews, failures := SplitRecords(records)

	summary := ScopeSummary{
		Scope:     scope,
		Reviews:   len(reviews),
		Errors:    len(failures),
		Decisions: make(map[Decision]int, len(Decisions)),
		Sections:  make([]SectionSummary, 0, len(RubricSections)),
	}
	for _, d := range Decisions {
		summary.Decisions[d] = 0
	}

	for _, section := range RubricSections {
		ss := SectionSummary{
			Key:       section.Key,
			Label:     section.Label,
			Exclusion: section.Exclusion,
			Criteria:  make([]CriterionSummary, len(section.Criteria)),
		}
		for i, key := range section.Criteria {
			ss.Criteria[i].Key = key
		}
		for _, rec := range reviews {
			for i, c := range rec.Review.CourseAnalysis.Section(section.Key) {
				if c.Met() {
					ss.Criteria[i].Met++
				}
			}
		}
		summary.Sections = append(summary.Sections, ss)
	}

	for _, rec := range reviews {
		summary.Decisions[rec.Review.CourseAnalysis.ReviewDecision.Decision]++
	}
	return summary
}

// FilterByCourses keeps reviews whose reported course number is in courses.
func FilterByCourses(records []Record, courses []string) []Record {
	keys := CourseKeySet(courses)
	out := make([]Record, 0)
	for _, rec := range records {
		if rec.IsError() {
			continue
		}
		if _, ok := keys[NormalizeCourse(rec.Review.CourseNumber())]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// ScopeOverview is a row of the scope listing.
type ScopeOverview struct {
	Scope   string `json:"scope"`
	Reviews int    `json:"reviews"`
	Errors  int    `json:"errors"`
}

// ProgramView joins a program's stored reviews with its missing courses.
type ProgramView struct {
	Program string        `json:"program"`
	Records []Record      `json:"records"`
	Missing MissingReport `json:"missing"`
}

// ItemOutcome is how an analyzed item was committed. OutcomeStarted is sent
// before the judgment call and is followed by a terminal outcome.
type ItemOutcome string

const (
	OutcomeStarted  ItemOutcome = "started"
	OutcomeSkipped  ItemOutcome = "skipped"
	OutcomeReviewed ItemOutcome = "reviewed"
	OutcomeError    ItemOutcome = "error"
)

// ItemEvent reports progress on one document of a batch.
type ItemEvent struct {
	Scope    string
	Document InputDocument
	Index    int
	Total    int
	Outcome  ItemOutcome
	// Err is set for OutcomeError.
	Err error
}

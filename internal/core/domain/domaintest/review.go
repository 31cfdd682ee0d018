// Package domaintest builds rubric judgments for tests.
package domaintest

import (
	"encoding/json"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
)

// ReviewMap returns a complete judgment as a mutable JSON tree. Every
// criterion scores 1 except exclusions, which score 0.
func ReviewMap(courseNumber string, decision domain.Decision) map[string]any {
	analysis := map[string]any{}
	for _, section := range domain.RubricSections {
		criteria := map[string]any{}
		score := 1
		if section.Exclusion {
			score = 0
		}
		for _, key := range section.Criteria {
			criteria[key] = map[string]any{
				"score":     score,
				"rationale": "rationale for " + key,
			}
		}
		analysis[section.Key] = criteria
	}
	analysis["review_decision"] = map[string]any{
		"decision":  string(decision),
		"rationale": "decided " + string(decision),
	}

	return map[string]any{
		"course_information": map[string]any{
			"course_number": courseNumber,
			"course_title":  "Title of " + courseNumber,
			"department":    nil,
			"college":       "College of Liberal Arts",
			"review_date":   nil,
		},
		"course_analysis": analysis,
	}
}

// ReviewJSON returns a complete, valid judgment as JSON text.
func ReviewJSON(courseNumber string, decision domain.Decision) string {
	return Encode(ReviewMap(courseNumber, decision))
}

// Encode marshals a JSON tree, panicking on failure.
func Encode(tree map[string]any) string {
	raw, err := json.Marshal(tree)
	if err != nil {
		panic(err)
	}
	return string(raw)
}

// Review returns the decoded form of ReviewJSON.
func Review(courseNumber string, decision domain.Decision) *domain.SyllabusReview {
	review, err := domain.ParseReview(ReviewJSON(courseNumber, decision))
	if err != nil {
		panic(err)
	}
	return review
}

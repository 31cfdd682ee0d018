package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var courseInformationFields = []string{
	"course_number",
	"course_title",
	"department",
	"college",
	"review_date",
}

// ParseReview validates raw judgment output against the rubric and decodes it.
// A single surrounding markdown code fence is stripped first; nothing else is
// repaired. Malformed JSON fails with ErrParse, a wrong shape with *SchemaError.
// Unknown fields are ignored.
func ParseReview(raw string) (*SyllabusReview, error) {
	body := StripCodeFence(raw)

	tree, err := decodeTree(body)
	if err != nil {
		return nil, WrapError(ErrParse, "parse judgment", err)
	}

	if err := checkShape(tree); err != nil {
		return nil, err
	}

	var review SyllabusReview
	if err := json.Unmarshal([]byte(body), &review); err != nil {
		return nil, WrapError(ErrParse, "decode judgment", err)
	}
	return &review, nil
}

// StripCodeFence removes a markdown fence (```json ... ```) wrapping the text.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	firstNewline := strings.Index(trimmed, "\n")
	if firstNewline < 0 {
		return trimmed
	}
	inner := trimmed[firstNewline+1:]
	if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
		inner = inner[:lastFence]
	}
	return strings.TrimSpace(inner)
}

func decodeTree(body string) (any, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errors.New("empty response")
	}
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return tree, nil
}

func checkShape(tree any) error {
	se := &SchemaError{}

	root, ok := tree.(map[string]any)
	if !ok {
		se.add("$", "must be an object")
		return se
	}

	if info := requireObject(se, root, "course_information", "course_information"); info != nil {
		for _, field := range courseInformationFields {
			v, present := info[field]
			if !present || v == nil {
				continue
			}
			if _, isString := v.(string); !isString {
				se.add("course_information."+field, "must be a string or null")
			}
		}
	}

	analysis := requireObject(se, root, "course_analysis", "course_analysis")
	if analysis != nil {
		for _, section := range RubricSections {
			sectionPath := "course_analysis." + section.Key
			obj := requireObject(se, analysis, section.Key, sectionPath)
			if obj == nil {
				continue
			}
			for _, key := range section.Criteria {
				checkCriterion(se, obj, key, sectionPath+"."+key)
			}
		}
		checkDecision(se, analysis)
	}

	if len(se.Violations) > 0 {
		return se
	}
	return nil
}

func checkCriterion(se *SchemaError, parent map[string]any, key, path string) {
	obj := requireObject(se, parent, key, path)
	if obj == nil {
		return
	}

	switch score := obj["score"].(type) {
	case nil:
		if _, present := obj["score"]; present {
			se.add(path+".score", "must be 0 or 1, got null")
		} else {
			se.add(path+".score", "is required")
		}
	case json.Number:
		if s := score.String(); s != "0" && s != "1" {
			se.add(path+".score", "must be 0 or 1, got %s", s)
		}
	default:
		se.add(path+".score", "must be 0 or 1, got %s", jsonType(score))
	}

	requireString(se, obj, "rationale", path+".rationale")
}

func checkDecision(se *SchemaError, analysis map[string]any) {
	const path = "course_analysis.review_decision"
	obj := requireObject(se, analysis, "review_decision", path)
	if obj == nil {
		return
	}
	if decision, ok := requireString(se, obj, "decision", path+".decision"); ok && !Decision(decision).Valid() {
		se.add(path+".decision", "must be one of approved, not_approved, deferred, got %q", decision)
	}
	requireString(se, obj, "rationale", path+".rationale")
}

func requireObject(se *SchemaError, parent map[string]any, key, path string) map[string]any {
	v, present := parent[key]
	if !present {
		se.add(path, "is required")
		return nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		se.add(path, "must be an object, got %s", jsonType(v))
		return nil
	}
	return obj
}

func requireString(se *SchemaError, parent map[string]any, key, path string) (string, bool) {
	v, present := parent[key]
	if !present {
		se.add(path, "is required")
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		se.add(path, "must be a string, got %s", jsonType(v))
		return "", false
	}
	return s, true
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

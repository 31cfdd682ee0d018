package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Record is one element of a Result Store file: either a reviewed syllabus or
// the error that prevented its review. Both count as done for resume.
type Record struct {
	SourceFile string
	// Review is set for rubric records.
	Review *SyllabusReview
	// Error is set for error records.
	Error string

	// raw keeps a loaded element byte-for-byte so a rewrite never alters it.
	raw json.RawMessage
}

// ReviewRecord tags a validated review with its source file.
func ReviewRecord(sourceFile string, review *SyllabusReview) Record {
	return Record{SourceFile: sourceFile, Review: review}
}

// ErrorRecord captures a failed analysis. The message is kept verbatim.
func ErrorRecord(sourceFile string, err error) Record {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Record{SourceFile: sourceFile, Error: msg}
}

// IsError reports whether the record is an Error Record.
func (r Record) IsError() bool {
	return r.Review == nil
}

type reviewRecordJSON struct {
	CourseInformation CourseInformation `json:"course_information"`
	CourseAnalysis    CourseAnalysis    `json:"course_analysis"`
	SourceFile        string            `json:"_source_file"`
}

type errorRecordJSON struct {
	SourceFile string `json:"_source_file"`
	Error      string `json:"_error"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	if r.Review == nil {
		return marshalUnescaped(errorRecordJSON{SourceFile: r.SourceFile, Error: r.Error})
	}
	return marshalUnescaped(reviewRecordJSON{
		CourseInformation: r.Review.CourseInformation,
		CourseAnalysis:    r.Review.CourseAnalysis,
		SourceFile:        r.SourceFile,
	})
}

// marshalUnescaped encodes v without HTML escaping.
func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON reads a stored element. Any element carrying an `_error` key,
// whatever its value, is an Error Record; everything else is decoded as a review.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var source string
	rawSource, ok := fields["_source_file"]
	if !ok {
		return errors.New("record has no _source_file")
	}
	if err := json.Unmarshal(rawSource, &source); err != nil {
		return fmt.Errorf("decode _source_file: %w", err)
	}

	out := Record{SourceFile: source, raw: bytes.Clone(data)}
	if rawErr, ok := fields["_error"]; ok {
		var msg string
		if err := json.Unmarshal(rawErr, &msg); err != nil || msg == "" {
			msg = string(rawErr)
		}
		out.Error = msg
		*r = out
		return nil
	}

	var review SyllabusReview
	if err := json.Unmarshal(data, &review); err != nil {
		return fmt.Errorf("decode review %s: %w", out.SourceFile, err)
	}
	out.Review = &review
	*r = out
	return nil
}

// CompletedKeys returns the source files already present in records.
func CompletedKeys(records []Record) map[string]struct{} {
	done := make(map[string]struct{}, len(records))
	for _, rec := range records {
		done[rec.SourceFile] = struct{}{}
	}
	return done
}

// SplitRecords separates reviews from errors, preserving order.
func SplitRecords(records []Record) (reviews, failures []Record) {
	for _, rec := range records {
		if rec.IsError() {
			failures = append(failures, rec)
		} else {
			reviews = append(reviews, rec)
		}
	}
	return reviews, failures
}

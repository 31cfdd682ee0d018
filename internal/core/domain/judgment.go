package domain

// MediaTypePDF is the inline document type accepted by document-capable backends.
const MediaTypePDF = "application/pdf"

// JudgmentRequest is one call to a judgment backend: the rubric system
// instruction and a single user turn.
type JudgmentRequest struct {
	DocumentName string
	System       string
	// Document and MediaType are set for inline submissions.
	Document  []byte
	MediaType string
	// Prompt is the user text: the fixed instruction, or extracted text
	// followed by it.
	Prompt string
}

// Inline reports whether the request carries the raw document.
func (r JudgmentRequest) Inline() bool {
	return len(r.Document) > 0
}

// Package prompt holds the fixed instructions sent with every judgment call.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed rubric.txt
var rubric string

// Instruction follows every submitted document.
const Instruction = "Analyze this syllabus and extract the requested information as JSON."

// LoadSystem returns the rubric system instruction: the file at path when
// set, the embedded rubric otherwise. It is read once at startup.
func LoadSystem(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return rubric, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt file: %w", err)
	}
	text := string(raw)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}
	return text, nil
}

// TextMessage embeds extracted syllabus text in the user message.
func TextMessage(name, text string) string {
	return fmt.Sprintf("Below is the text content of a syllabus document (%s):\n\n%s\n\n%s", name, text, Instruction)
}

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
)

// ProgramFile is the program membership mapping read from a JSON or YAML
// file. It is loaded on first use and never written.
type ProgramFile struct {
	path string

	mu       sync.Mutex
	loaded   bool
	order    []string
	programs map[string][]string
}

func NewProgramFile(path string) *ProgramFile {
	return &ProgramFile{path: path}
}

// Programs returns program names in file order.
func (p *ProgramFile) Programs(_ context.Context) ([]string, error) {
	if err := p.load(); err != nil {
		return nil, err
	}
	return append([]string(nil), p.order...), nil
}

func (p *ProgramFile) Courses(_ context.Context, program string) ([]string, error) {
	if err := p.load(); err != nil {
		return nil, err
	}
	courses, ok := p.programs[program]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "lookup program",
			fmt.Errorf("program %q not found (available: %s)", program, strings.Join(p.order, ", ")))
	}
	return append([]string(nil), courses...), nil
}

func (p *ProgramFile) load() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded {
		return nil
	}

	raw, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.WrapError(domain.ErrNotFound, "load programs", fmt.Errorf("programs file not found: %s", p.path))
		}
		return fmt.Errorf("read programs file: %w", err)
	}

	order, programs, err := Parse(raw)
	if err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "load programs", fmt.Errorf("%s: %w", p.path, err))
	}
	p.order, p.programs, p.loaded = order, programs, true
	return nil
}

// Parse decodes a mapping of program name to course list from JSON or YAML.
// Key order is preserved.
func Parse(raw []byte) ([]string, map[string][]string, error) {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return parseJSON(trimmed)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, err
	}
	if doc.Kind == 0 {
		return []string{}, map[string][]string{}, nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, nil, errors.New("programs file must be a mapping of program name to course list")
	}

	root := doc.Content[0]
	order := make([]string, 0, len(root.Content)/2)
	programs := make(map[string][]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		var courses []string
		if err := root.Content[i+1].Decode(&courses); err != nil {
			return nil, nil, fmt.Errorf("program %q: %w", name, err)
		}
		if _, dup := programs[name]; !dup {
			order = append(order, name)
		}
		programs[name] = courses
	}
	return order, programs, nil
}

func parseJSON(raw []byte) ([]string, map[string][]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, errors.New("programs file must be a mapping of program name to course list")
	}

	order := make([]string, 0)
	programs := make(map[string][]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		name, _ := tok.(string)

		var courses []string
		if err := dec.Decode(&courses); err != nil {
			return nil, nil, fmt.Errorf("program %q: %w", name, err)
		}
		if _, dup := programs[name]; !dup {
			order = append(order, name)
		}
		programs[name] = courses
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return order, programs, nil
}

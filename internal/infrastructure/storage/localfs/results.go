package localfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
)

const resultExt = ".json"

// ResultStore keeps one indented JSON array per scope under a directory.
// Every Append rewrites the whole file through a temp file and a rename.
type ResultStore struct {
	dir string

	mu     sync.Mutex
	loaded map[string][]domain.Record
}

func NewResultStore(dir string) (*ResultStore, error) {
	if dir == "" {
		dir = "./data/results"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.WrapError(domain.ErrStore, "create results dir", err)
	}
	return &ResultStore{dir: dir, loaded: make(map[string][]domain.Record)}, nil
}

// Path returns the backing file of a scope.
func (s *ResultStore) Path(scopeKey string) string {
	return filepath.Join(s.dir, scopeKey+resultExt)
}

// Load reads the scope file from disk. A missing file is an empty scope.
func (s *ResultStore) Load(_ context.Context, scopeKey string) ([]domain.Record, error) {
	if err := validateScopeKey(scopeKey); err != nil {
		return nil, err
	}

	records, err := s.read(scopeKey)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.loaded[scopeKey] = records
	s.mu.Unlock()

	return append([]domain.Record(nil), records...), nil
}

func (s *ResultStore) CompletedKeys(ctx context.Context, scopeKey string) (map[string]struct{}, error) {
	records, err := s.Load(ctx, scopeKey)
	if err != nil {
		return nil, err
	}
	return domain.CompletedKeys(records), nil
}

// Append adds rec to the scope's sequence and rewrites the file. The
// in-memory sequence only grows once the file is durably replaced.
func (s *ResultStore) Append(_ context.Context, scopeKey string, rec domain.Record) error {
	if err := validateScopeKey(scopeKey); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.loaded[scopeKey]
	if !ok {
		records, err := s.read(scopeKey)
		if err != nil {
			return err
		}
		current = records
	}

	next := make([]domain.Record, len(current), len(current)+1)
	copy(next, current)
	next = append(next, rec)

	data, err := encodeIndented(next)
	if err != nil {
		return domain.WrapError(domain.ErrStore, "encode results", err)
	}
	if err := writeFileAtomic(s.Path(scopeKey), data); err != nil {
		return domain.WrapError(domain.ErrStore, "write results", err)
	}

	s.loaded[scopeKey] = next
	return nil
}

// ListScopes returns the scope keys that have a result file, sorted.
func (s *ResultStore) ListScopes(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, domain.WrapError(domain.ErrStore, "list results", err)
	}

	scopes := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != resultExt {
			continue
		}
		scopes = append(scopes, strings.TrimSuffix(name, resultExt))
	}
	sort.Strings(scopes)
	return scopes, nil
}

func (s *ResultStore) read(scopeKey string) ([]domain.Record, error) {
	raw, err := os.ReadFile(s.Path(scopeKey))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Record{}, nil
		}
		return nil, domain.WrapError(domain.ErrStore, "read results", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []domain.Record{}, nil
	}

	var records []domain.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, domain.WrapError(domain.ErrStore, "decode results", fmt.Errorf("%s: %w", s.Path(scopeKey), err))
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

func encodeIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFileAtomic replaces path so readers see either the old or the new
// content in full.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	syncDir(dir)
	return nil
}

func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

func validateScopeKey(scopeKey string) error {
	if scopeKey == "" || strings.HasPrefix(scopeKey, ".") || strings.ContainsAny(scopeKey, `/\`) {
		return domain.WrapError(domain.ErrInvalidInput, "scope key", fmt.Errorf("invalid scope key %q", scopeKey))
	}
	return nil
}

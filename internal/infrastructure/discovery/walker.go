package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
)

// Walker finds syllabi under a root directory, flat or split into
// department subdirectories.
type Walker struct {
	root string
}

func NewWalker(root string) *Walker {
	return &Walker{root: root}
}

func (w *Walker) Root() string {
	return w.root
}

// Discover returns supported documents matching scope, sorted by file name
// and then by relative path. Hidden files and directories are ignored.
func (w *Walker) Discover(ctx context.Context, scope domain.Scope) ([]domain.InputDocument, error) {
	info, err := os.Stat(w.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrNotFound, "discover syllabi", fmt.Errorf("syllabi directory %s does not exist", w.root))
		}
		return nil, fmt.Errorf("stat syllabi directory: %w", err)
	}
	if !info.IsDir() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "discover syllabi", fmt.Errorf("%s is not a directory", w.root))
	}

	match := scope.Matcher()
	docs := make([]domain.InputDocument, 0)

	err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if path != w.root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		format, ok := domain.FormatOf(name)
		if !ok || !match(name) {
			return nil
		}

		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return err
		}
		docs = append(docs, domain.InputDocument{
			Name:    name,
			RelPath: filepath.ToSlash(rel),
			Path:    path,
			Format:  format,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk syllabi directory: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Name != docs[j].Name {
			return docs[i].Name < docs[j].Name
		}
		return docs[i].RelPath < docs[j].RelPath
	})
	return docs, nil
}

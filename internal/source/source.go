// Package source enumerates and reads the documents a comparison run covers.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"docbench/internal/domain"
)

// Directory reads supported documents from a single directory. Document IDs
// are file names relative to the directory.
type Directory struct {
	dir string
}

// NewDirectory creates a Directory source rooted at dir.
func NewDirectory(dir string) *Directory {
	return &Directory{dir: dir}
}

// List returns supported file names in lexicographic order. Subdirectories
// are not descended into.
func (d *Directory) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("directory %s: %w", d.dir, domain.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("reading directory %s: %w", d.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !domain.IsSupportedFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("directory %s: %w", d.dir, domain.ErrNoDocuments)
	}
	sort.Strings(names)
	return names, nil
}

func (d *Directory) Read(_ context.Context, id string) ([]byte, error) {
	return readFile(filepath.Join(d.dir, filepath.Base(id)))
}

// List is an explicit list of file paths, kept in caller order. Paths are
// only checked when read; listing fails if a path is repeated.
type List struct {
	paths []string
}

// NewList creates a List source over paths.
func NewList(paths []string) *List {
	cp := make([]string, len(paths))
	copy(cp, paths)
	return &List{paths: cp}
}

func (l *List) List(_ context.Context) ([]string, error) {
	if err := domain.CheckUniqueDocumentIDs(l.paths); err != nil {
		return nil, err
	}
	out := make([]string, len(l.paths))
	copy(out, l.paths)
	return out, nil
}

func (l *List) Read(_ context.Context, id string) ([]byte, error) {
	return readFile(id)
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, domain.ErrInvalidInput)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Package adapter contains the infrastructure adapters of the weave CLI:
// IR file loading, output files and saved reports.
package adapter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	m "gooze.dev/pkg/weave/internal/model"
)

// recursiveSuffix marks a path whose subdirectories are searched too, as in
// "./testdata/...".
const recursiveSuffix = "/..."

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when loading IR programs and writing outputs.
//
//nolint:interfacebloat // A richer interface keeps workflow logic decoupled from os/fs.
type SourceFSAdapter interface {
	// Get loads every IR program named by paths. A directory contributes its
	// *.ir.yaml files; a directory ending in "/..." also its subdirectories.
	// Woven outputs are never loaded as sources.
	Get(ctx context.Context, paths []m.Path) ([]m.Source, error)

	// Walk traverses the provided root path. When recursive is false the
	// implementation should limit itself to the root directory (no sub-dirs).
	Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// MkdirAll creates a directory and its parents.
	MkdirAll(path m.Path) error

	// WriteFile writes content to a file with the given permissions.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type directly into the
// domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter implements SourceFSAdapter on the local disk.
type LocalSourceFSAdapter struct {
	IRFileAdapter
}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter that parses
// programs with irAdapter.
func NewLocalSourceFSAdapter(irAdapter IRFileAdapter) *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{IRFileAdapter: irAdapter}
}

// Get loads the IR programs under paths, ordered by path.
func (a *LocalSourceFSAdapter) Get(ctx context.Context, paths []m.Path) ([]m.Source, error) {
	files := make(map[string]struct{})

	for _, p := range paths {
		root, recursive := splitRecursive(string(p))

		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("root path error: %w", err)
		}

		if !info.IsDir() {
			files[root] = struct{}{}
			continue
		}

		err = a.Walk(m.Path(root), recursive, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if !info.IsDir() && isSourceFile(path) {
				files[path] = struct{}{}
			}

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	ordered := make([]string, 0, len(files))
	for path := range files {
		ordered = append(ordered, path)
	}

	sort.Strings(ordered)

	sources := make([]m.Source, 0, len(ordered))

	for _, path := range ordered {
		source, err := a.load(ctx, m.Path(path))
		if err != nil {
			return nil, err
		}

		sources = append(sources, source)
	}

	slog.Debug("Loaded sources", "count", len(sources))

	return sources, nil
}

func (a *LocalSourceFSAdapter) load(ctx context.Context, path m.Path) (m.Source, error) {
	content, err := a.ReadFile(path)
	if err != nil {
		return m.Source{}, fmt.Errorf("failed to load %s: %w", path, err)
	}

	program, err := a.Parse(ctx, string(path), content)
	if err != nil {
		return m.Source{}, err
	}

	return m.Source{
		Origin:  &m.File{Path: path, Hash: fmt.Sprintf("%x", sha256.Sum256(content))},
		Program: program,
	}, nil
}

func splitRecursive(path string) (string, bool) {
	if path == "..." {
		return ".", true
	}

	if strings.HasSuffix(path, recursiveSuffix) {
		root := strings.TrimSuffix(path, recursiveSuffix)
		if root == "" {
			root = "/"
		}

		return root, true
	}

	return path, false
}

func isSourceFile(path string) bool {
	return strings.HasSuffix(path, m.IRExt) && !strings.HasSuffix(path, m.WovenExt)
}

// Walk iterates over files under root, optionally descending into subdirectories.
func (a *LocalSourceFSAdapter) Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && !recursive && path != rootStr {
			return filepath.SkipDir
		}

		return fn(path, info, nil)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// MkdirAll creates path and any missing parents.
func (a *LocalSourceFSAdapter) MkdirAll(path m.Path) error {
	return os.MkdirAll(string(path), 0o750)
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}

// Package adapter contains the host-facing adapters of assetmaid: the project
// filesystem, the content providers, and the report store.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// ProjectFSAdapter abstracts the filesystem operations the domain layer relies on
// when scanning and relocating. It hides direct `os` access so the workflow logic can
// be tested against an in-memory tree.
//
//nolint:interfacebloat // A richer interface keeps relocation logic decoupled from os/fs.
type ProjectFSAdapter interface {
	// Walk traverses root recursively.
	Walk(ctx context.Context, root m.Path, fn FilepathWalkFunc) error

	// Open opens a file for streaming reads.
	Open(ctx context.Context, path m.Path) (io.ReadCloser, error)

	// ReadFile loads a file and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// WriteFile writes content to a file, creating parent directories.
	WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error

	// FileInfo returns metadata for a path.
	FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error)

	// Exists reports whether path exists.
	Exists(ctx context.Context, path m.Path) (bool, error)

	// MkdirAll creates a directory and its parents.
	MkdirAll(ctx context.Context, path m.Path) error

	// MoveFile moves a single file, creating the destination directory.
	MoveFile(ctx context.Context, src, dst m.Path) error

	// JoinPath joins path elements into a single filesystem path.
	JoinPath(elem ...string) m.Path
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is defined
// here to avoid leaking the standard-library type directly into the domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// BillyProjectFSAdapter implements ProjectFSAdapter on top of a go-billy filesystem.
// Paths handed to it are filesystem paths (absolute for the local adapter).
type BillyProjectFSAdapter struct {
	fs billy.Filesystem
}

// NewLocalProjectFSAdapter returns an adapter over the host operating system.
func NewLocalProjectFSAdapter() *BillyProjectFSAdapter {
	return NewProjectFSAdapter(osfs.New(string(filepath.Separator)))
}

// NewProjectFSAdapter wraps an arbitrary billy filesystem (e.g. memfs in tests).
func NewProjectFSAdapter(fs billy.Filesystem) *BillyProjectFSAdapter {
	return &BillyProjectFSAdapter{fs: fs}
}

// Walk iterates over every file and directory under root.
func (a *BillyProjectFSAdapter) Walk(ctx context.Context, root m.Path, fn FilepathWalkFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return util.Walk(a.fs, string(root), func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		return fn(path, info, err)
	})
}

// Open opens path for reading.
func (a *BillyProjectFSAdapter) Open(ctx context.Context, path m.Path) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return a.fs.Open(string(path))
}

// ReadFile loads file contents.
func (a *BillyProjectFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return util.ReadFile(a.fs, string(path))
}

// WriteFile writes content to path, creating the parent directory when needed.
func (a *BillyProjectFSAdapter) WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := a.fs.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return err
	}

	return util.WriteFile(a.fs, string(path), content, perm)
}

// FileInfo returns os.FileInfo metadata for path.
func (a *BillyProjectFSAdapter) FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return a.fs.Stat(string(path))
}

// Exists reports whether path exists. Only unexpected stat errors are returned.
func (a *BillyProjectFSAdapter) Exists(ctx context.Context, path m.Path) (bool, error) {
	_, err := a.FileInfo(ctx, path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// MkdirAll creates path and any missing parents.
func (a *BillyProjectFSAdapter) MkdirAll(ctx context.Context, path m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return a.fs.MkdirAll(string(path), 0o750)
}

// MoveFile renames src to dst. When the rename crosses devices the file is copied
// and the source removed afterwards.
func (a *BillyProjectFSAdapter) MoveFile(ctx context.Context, src, dst m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := a.fs.MkdirAll(filepath.Dir(string(dst)), 0o750); err != nil {
		return fmt.Errorf("create destination dir: %w", err)
	}

	err := a.fs.Rename(string(src), string(dst))
	if err == nil {
		return nil
	}

	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := a.copyFile(string(src), string(dst)); err != nil {
		return fmt.Errorf("copy across devices: %w", err)
	}

	return a.fs.Remove(string(src))
}

// copyFile copies a single file.
func (a *BillyProjectFSAdapter) copyFile(src, dst string) error {
	sourceFile, err := a.fs.Open(src)
	if err != nil {
		return err
	}

	defer func() { _ = sourceFile.Close() }()

	destFile, err := a.fs.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		_ = destFile.Close()
		return err
	}

	return destFile.Close()
}

// JoinPath joins path elements into a single path.
func (a *BillyProjectFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(a.fs.Join(elem...))
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// File keeps one file per item and scope below dir. Writes go through a
// temporary file and a rename so readers never see a torn record.
type File struct {
	dir   string
	scope ScopeFunc
}

func NewFile(dir string, scope ScopeFunc) (*File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return &File{dir: dir, scope: scope}, nil
}

func (f *File) GetItem(ctx context.Context, name string) ([]byte, error) {
	p, err := f.path(ctx, name)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return b, nil
}

func (f *File) SetItem(ctx context.Context, name string, value []byte) error {
	p, err := f.path(ctx, name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("renaming into %s: %w", p, err)
	}
	return nil
}

func (f *File) RemoveItem(ctx context.Context, name string) error {
	p, err := f.path(ctx, name)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", p, err)
	}
	return nil
}

func (f *File) path(ctx context.Context, name string) (string, error) {
	scope, err := f.scope(ctx)
	if err != nil {
		return "", err
	}
	file := unsafeChars.ReplaceAllString(name+"."+scope, "_") + ".json"
	return filepath.Join(f.dir, file), nil
}

package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/spf13/afero"
)

// Local stores files in a directory of an afero filesystem, served by the HTTP
// layer under baseURL (e.g. "/uploads").
type Local struct {
	fs      afero.Fs
	dir     string
	baseURL string
}

// NewLocal creates a Local store. Pass afero.NewOsFs() in production.
func NewLocal(fsys afero.Fs, dir, baseURL string) *Local {
	return &Local{fs: fsys, dir: dir, baseURL: baseURL}
}

// FileSystem exposes the uploads directory for http.FileServer.
func (l *Local) FileSystem() http.FileSystem {
	return afero.NewHttpFs(l.fs).Dir(l.dir)
}

// Save writes r to <dir>/<name>, creating the directory on demand.
func (l *Local) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := l.fs.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	target := filepath.Join(l.dir, name)
	f, err := l.fs.Create(target)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = l.fs.Remove(target)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return publicPath(l.baseURL, name), nil
}

// Delete removes the file behind publicPath. A missing file is not an error.
func (l *Local) Delete(_ context.Context, publicPath string) error {
	name, err := nameFromPublic(l.baseURL, publicPath)
	if err != nil {
		return err
	}
	err = l.fs.Remove(filepath.Join(l.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// StoredName returns the name behind publicPath, or an error when the path is
// not one this store hands out.
func (l *Local) StoredName(publicPath string) (string, error) {
	return nameFromPublic(l.baseURL, publicPath)
}

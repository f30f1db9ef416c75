// Package media persists uploaded and generated files and maps them to public paths.
package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/classifieds-api/internal/pkg/filename"
)

// Store persists binary payloads under a name and returns the public path they are served from.
// Delete accepts a path previously returned by Save; a missing file is not an error.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, publicPath string) error
}

// publicPath joins the public base URL and a stored name.
func publicPath(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + name
}

// nameFromPublic extracts the stored name from a public path, rejecting paths outside base.
func nameFromPublic(base, p string) (string, error) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(p, prefix) {
		return "", fmt.Errorf("path %q is not managed by this store", p)
	}
	name := strings.TrimPrefix(p, prefix)
	if strings.Contains(name, "/") || validName(name) != nil {
		return "", fmt.Errorf("invalid media path %q", p)
	}
	return name, nil
}

func validName(name string) error {
	if name == "" || name != filename.Sanitize(name) {
		return fmt.Errorf("invalid media name %q", name)
	}
	return nil
}

// Package objectstore stores uploaded files (receipts, gallery photos,
// cover images) and hands out public URLs for them.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ErrInvalidPath is returned for empty paths or paths escaping the root.
var ErrInvalidPath = errors.New("invalid object path")

// Object is a stored file.
type Object struct {
	Name string
	URL  string
}

// Store is the object storage contract used by the services.
type Store interface {
	// Put writes r under key and returns its public URL.
	Put(ctx context.Context, key string, r io.Reader) (string, error)

	// List returns the objects directly under prefix, sorted by name.
	List(ctx context.Context, prefix string) ([]Object, error)
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeName replaces everything except letters, digits, dots and dashes
// with "_" so user file names are safe as path segments.
func SanitizeName(name string) string {
	name = unsafeChars.ReplaceAllString(name, "_")
	if name == "" || strings.Trim(name, ".") == "" {
		return "_"
	}
	return name
}

// Key joins path segments, sanitising each one.
func Key(segments ...string) string {
	clean := make([]string, len(segments))
	for i, s := range segments {
		clean[i] = SanitizeName(s)
	}
	return strings.Join(clean, "/")
}

// Local keeps objects in a directory and serves them under baseURL.
type Local struct {
	root    string
	baseURL string
}

var _ Store = (*Local)(nil)

// NewLocal creates the root directory if needed.
func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &Local{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (l *Local) resolve(key string) (string, error) {
	key = strings.Trim(key, "/")
	if key == "" {
		return "", ErrInvalidPath
	}
	if !fs.ValidPath(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}
	return filepath.Join(l.root, filepath.FromSlash(key)), nil
}

// URL returns the public URL for key.
func (l *Local) URL(key string) string {
	return l.baseURL + "/" + path.Clean(strings.Trim(key, "/"))
}

// Put writes r to key, replacing any existing object. The write goes to a
// temporary file first so readers never see a partial object.
func (l *Local) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create object: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("failed to store object: %w", err)
	}
	return l.URL(key), nil
}

// List returns the files directly under prefix. A missing prefix is empty.
func (l *Local) List(ctx context.Context, prefix string) ([]Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := l.resolve(prefix)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Object{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	objects := make([]Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		objects = append(objects, Object{
			Name: e.Name(),
			URL:  l.URL(strings.Trim(prefix, "/") + "/" + e.Name()),
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects, nil
}

// Handler serves stored objects. Mount it with http.StripPrefix.
func (l *Local) Handler() http.Handler {
	return http.FileServer(http.Dir(l.root))
}

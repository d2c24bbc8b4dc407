package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// Local keeps assets on disk under a media root and serves them under a URL prefix
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates a filesystem backend
func NewLocal(root, baseURL string) *Local {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Local{root: root, baseURL: baseURL}
}

// Name implements Backend
func (l *Local) Name() string { return "local" }

// Root returns the media directory
func (l *Local) Root() string { return l.root }

// Put writes data to {root}/{key}.{ext}. The extension comes from the
// content itself so the file is served with the right type. The write goes
// through a temp file and a rename so readers never see a partial image.
// A key maps to one file: a previous write with another extension is removed.
func (l *Local) Put(ctx context.Context, key string, data []byte, contentType string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	rel, err := cleanKey(key)
	if err != nil {
		return Object{}, err
	}
	rel += "." + extension(data, contentType)

	dst := filepath.Join(l.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Object{}, fmt.Errorf("failed to create media directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return Object{}, fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return Object{}, err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return Object{}, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return Object{}, fmt.Errorf("failed to move %s into place: %w", rel, err)
	}
	if err := removeSiblings(dst); err != nil {
		return Object{}, fmt.Errorf("failed to replace %s: %w", key, err)
	}

	return Object{Ref: rel, URL: l.URL(rel), Size: int64(len(data))}, nil
}

// Open reads a media-relative path. Remote URLs left over from a previous
// deployment mode are downloaded.
func (l *Local) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if IsRemote(ref) {
		return fetch(ctx, ref)
	}
	rel, err := cleanKey(strings.TrimPrefix(ref, l.baseURL))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(l.root, filepath.FromSlash(rel)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// URL maps a stored reference to a browser URL
func (l *Local) URL(ref string) string {
	if ref == "" || IsRemote(ref) || strings.HasPrefix(ref, l.baseURL) {
		return ref
	}
	return l.baseURL + strings.TrimPrefix(ref, "/")
}

// removeSiblings deletes {key}.{other} files left next to dst by earlier
// writes of the same key with different content types.
func removeSiblings(dst string) error {
	dir, name := filepath.Split(dst)
	stem := strings.TrimSuffix(name, filepath.Ext(name)) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		other := entry.Name()
		if other == name || entry.IsDir() || !strings.HasPrefix(other, stem) {
			continue
		}
		if strings.Contains(strings.TrimPrefix(other, stem), ".") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, other)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// cleanKey rejects keys that would escape the media root
func cleanKey(key string) (string, error) {
	rel := path.Clean("/" + strings.TrimSpace(key))[1:]
	if rel == "" || rel != strings.TrimPrefix(strings.TrimSpace(key), "/") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return rel, nil
}

func extension(data []byte, contentType string) string {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		if kind.Extension == "jpeg" {
			return "jpg"
		}
		return kind.Extension
	}
	switch contentType {
	case "image/webp":
		return "webp"
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	}
	return "bin"
}

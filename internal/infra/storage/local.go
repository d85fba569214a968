package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/bryanwahyu/rentdoc/internal/domain/documents"
)

// LocalStore keeps documents on disk, for development and tests. URLs are
// file:// URLs under Dir.
type LocalStore struct {
	Dir string
}

func NewLocal(dir string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{Dir: abs}, nil
}

func (s *LocalStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	path, ok := s.within(filepath.Join(s.Dir, filepath.FromSlash(key)))
	if !ok {
		return "", fmt.Errorf("%w: key %q escapes store", documents.ErrInvalidRequest, key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String(), nil
}

func (s *LocalStore) Open(_ context.Context, tenant, fileURL string) (io.ReadCloser, error) {
	u, err := url.Parse(fileURL)
	if err != nil || u.Scheme != "file" {
		return nil, documents.ErrNotStored
	}
	path, ok := s.within(filepath.FromSlash(u.Path))
	if !ok {
		return nil, documents.ErrNotStored
	}
	key := filepath.ToSlash(strings.TrimPrefix(path, s.Dir+string(filepath.Separator)))
	if !ownedBy(key, tenant) {
		return nil, fmt.Errorf("%w: %s is outside tenant %s", documents.ErrNotStored, key, tenant)
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, documents.ErrNotStored
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *LocalStore) Ping(context.Context) error {
	_, err := os.Stat(s.Dir)
	return err
}

// ownedBy reports whether key lies under the tenant prefix. Keys are
// written as <tenant>/<documentType>/<uuid>-<name>.
func ownedBy(key, tenant string) bool {
	return tenant == "" || strings.HasPrefix(key, tenant+"/")
}

func (s *LocalStore) within(path string) (string, bool) {
	clean := filepath.Clean(path)
	return clean, strings.HasPrefix(clean, s.Dir+string(filepath.Separator))
}

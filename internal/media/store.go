// Package media accepts uploaded files, validates them and hands them to a storage
// provider: the local serving directory or an S3-compatible object store.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Store persists media objects and returns a reference clients can fetch.
type Store interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader, size int64) (string, error)
	Remove(ctx context.Context, ref string) error
	Owns(ref string) bool
}

var (
	errMissingUploadDir    = errors.New("upload directory is required")
	errMissingPublicPrefix = errors.New("public prefix is required")
	errInvalidKey          = errors.New("invalid object key")
)

// LocalStore keeps objects in a directory served under a public URL prefix.
type LocalStore struct {
	dir          string
	publicPrefix string
}

// NewLocalStore creates dir when missing. References take the form publicPrefix/key.
func NewLocalStore(dir string, publicPrefix string) (*LocalStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errMissingUploadDir
	}
	publicPrefix = "/" + strings.Trim(strings.TrimSpace(publicPrefix), "/")
	if publicPrefix == "/" {
		return nil, errMissingPublicPrefix
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{dir: dir, publicPrefix: publicPrefix}, nil
}

// Dir returns the directory backing the store.
func (s *LocalStore) Dir() string {
	return s.dir
}

// PublicPrefix returns the URL prefix under which objects are served.
func (s *LocalStore) PublicPrefix() string {
	return s.publicPrefix
}

func (s *LocalStore) Put(ctx context.Context, key string, contentType string, body io.Reader, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	target := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	file, err := os.Create(target)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		os.Remove(target)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(target)
		return "", err
	}
	return path.Join(s.publicPrefix, clean), nil
}

func (s *LocalStore) Remove(ctx context.Context, ref string) error {
	localPath, ok := s.LocalPath(ref)
	if !ok {
		return nil
	}
	if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) Owns(ref string) bool {
	_, ok := s.LocalPath(ref)
	return ok
}

// LocalPath maps a reference produced by Put back to its file path.
func (s *LocalStore) LocalPath(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	prefix := s.publicPrefix + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	clean, err := cleanKey(strings.TrimPrefix(ref, prefix))
	if err != nil {
		return "", false
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), true
}

func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return "", errInvalidKey
		}
	}
	clean := strings.TrimPrefix(path.Clean("/"+key), "/")
	if clean == "" {
		return "", errInvalidKey
	}
	return clean, nil
}

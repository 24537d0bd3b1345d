package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/danodev/daworks/internal/config"
)

// StorageService writes uploads under the configured dir using
// generated names, so client-supplied file names never touch the disk.
type StorageService struct {
	dir        string
	publicBase string
	maxBytes   int64
}

func NewStorageService(cfg *config.StorageConfig) (*StorageService, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}

	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 20
	}

	return &StorageService{
		dir:        cfg.UploadDir,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxBytes:   int64(maxMB) << 20,
	}, nil
}

// MaxBytes returns the upload size cap in bytes
func (s *StorageService) MaxBytes() int64 { return s.maxBytes }

// Dir returns the upload directory for static file serving
func (s *StorageService) Dir() string { return s.dir }

// Save streams one upload to disk and returns the stored name plus the
// public URL it will be served from
func (s *StorageService) Save(fileName string, size int64, r io.Reader) (string, string, error) {
	if size > s.maxBytes {
		return "", "", fmt.Errorf("file exceeds the %d MB upload limit", s.maxBytes>>20)
	}

	storedName := storedFileName(fileName)
	path := filepath.Join(s.dir, storedName)

	f, err := os.Create(path)
	if err != nil {
		return "", "", err
	}

	// The declared size is client data; cap the copy as well
	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", "", err
	}
	if written > s.maxBytes {
		os.Remove(path)
		return "", "", fmt.Errorf("file exceeds the %d MB upload limit", s.maxBytes>>20)
	}

	return storedName, s.PublicURL(storedName), nil
}

// PublicURL returns the URL a stored file is served from
func (s *StorageService) PublicURL(storedName string) string {
	return s.publicBase + "/" + storedName
}

// Path resolves a stored name to its on-disk location. Rejects
// anything that is not a bare generated name.
func (s *StorageService) Path(storedName string) (string, error) {
	if storedName == "" || filepath.Base(storedName) != storedName {
		return "", errors.New("invalid stored name")
	}
	return filepath.Join(s.dir, storedName), nil
}

// Delete removes a stored file. A missing file is not an error, the
// metadata row is the source of truth.
func (s *StorageService) Delete(storedName string) error {
	path, err := s.Path(storedName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// storedFileName generates a collision-free disk name, keeping the
// original extension so content type detection still works. Anything
// but a short alphanumeric extension is dropped.
func storedFileName(fileName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(fileName)))
	if len(ext) > 10 {
		ext = ""
	}
	for _, r := range ext {
		if r == '.' {
			continue
		}
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			ext = ""
			break
		}
	}
	return uuid.New().String() + ext
}

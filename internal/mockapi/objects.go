package mockapi

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	internal_errors "github.com/itchan-dev/tunetag/shared/errors"
)

// Objects is a directory standing in for the cloud object store behind
// pre-signed URLs.
type Objects struct {
	rootPath string
}

func NewObjects(rootPath string) (*Objects, error) {
	// Use filepath.Clean to prevent path traversal issues like "media/../"
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &Objects{rootPath: p}, nil
}

// resolve maps an object name onto a path under the root, refusing names
// that would escape it.
func (s *Objects) resolve(objectName string) (string, error) {
	clean := filepath.Clean("/" + objectName)
	if objectName == "" || strings.Contains(objectName, "..") || clean == "/" {
		return "", &internal_errors.ErrorWithStatusCode{Message: "invalid object name", StatusCode: http.StatusBadRequest}
	}
	return filepath.Join(s.rootPath, clean), nil
}

// Save writes an object, replacing any previous content.
func (s *Objects) Save(objectName string, data io.Reader) (int64, error) {
	fullPath, err := s.resolve(objectName)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create subdirectories: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, data)
	if err != nil {
		os.Remove(fullPath) // Best effort, ignore error here.
		return 0, fmt.Errorf("failed to copy object data: %w", err)
	}
	return n, nil
}

// Open opens an object for reading.
func (s *Objects) Open(objectName string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(objectName)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "object not found", StatusCode: http.StatusNotFound}
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return file, nil
}

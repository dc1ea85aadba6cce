// Package local serves contest artifacts from a directory on disk. It
// implements the same listing and content surface as the bucket client,
// for development and single-node deployments without object storage.
package local

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/contestkit/arena/internal/domain"
)

// Store reads contest artifacts below a base directory. Relative paths
// double as the opaque artifact ids, mirroring bucket object keys.
type Store struct {
	baseDir string
}

// NewStore creates a local artifact store rooted at baseDir.
func NewStore(baseDir string) (*Store, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("artifact directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("artifact path %s is not a directory", baseDir)
	}
	return &Store{baseDir: baseDir}, nil
}

// List returns the metadata of every file whose relative path starts
// with prefix.
func (s *Store) List(_ context.Context, prefix string) ([]domain.FileInfo, error) {
	var files []domain.FileInfo
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !strings.HasPrefix(rel, prefix) {
			return nil
		}
		files = append(files, domain.FileInfo{ID: rel, Name: d.Name()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk artifact directory: %w", err)
	}
	return files, nil
}

// Fetch reads the full content of one artifact by its relative path.
func (s *Store) Fetch(_ context.Context, fileID string) ([]byte, error) {
	// Ids come from our own listings, but never follow one outside the base.
	if !filepath.IsLocal(filepath.FromSlash(fileID)) {
		return nil, fmt.Errorf("artifact %s: %w", fileID, domain.ErrArtifactNotFound)
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, filepath.FromSlash(fileID)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact %s: %w", fileID, domain.ErrArtifactNotFound)
		}
		return nil, fmt.Errorf("read artifact %s: %w", fileID, err)
	}
	return data, nil
}

package storage

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	apperrors "github.com/codeinsight/insight-agent/internal/errors"
)

// LocalStore is the fallback tier: JSON files under a local data directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a local store rooted at dir
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Put writes body to {dir}/{filename} and returns the local locator. The
// payload goes through a temp file and a rename so a failed write never
// leaves a partial file at the final path.
func (s *LocalStore) Put(filename string, body []byte) (Location, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "local: create data dir %s", s.dir)
	}

	finalPath := filepath.Join(s.dir, filename)
	tmp, err := os.CreateTemp(s.dir, filename+".tmp*")
	if err != nil {
		return "", eris.Wrap(err, "local: create temp file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", eris.Wrapf(err, "local: write %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", eris.Wrapf(err, "local: close %s", tmpPath)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", eris.Wrapf(err, "local: rename to %s", finalPath)
	}

	return Location(finalPath), nil
}

// Get reads the file at path. A missing file is a NOT_FOUND AppError so the
// caller can distinguish it from read failures.
func (s *LocalStore) Get(path string) ([]byte, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("file " + path)
		}
		return nil, eris.Wrapf(err, "local: read %s", path)
	}
	return body, nil
}

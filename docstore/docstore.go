// Package docstore persists verification evidence on the local filesystem.
package docstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var ErrStorageUnavailable = errors.New("docstore: storage unavailable")

const verifySubdir = "verify"

// Store writes evidence files under <baseDir>/verify and hands back the
// public path recorded on the verification request.
type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

// WithClock replaces the timestamp source. Tests only.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Store writes data to a file named after the owner and the current time in
// milliseconds. The returned path is the URL-style location of the file, not
// the filesystem path.
func (s *Store) Store(ownerID int64, data []byte, ext string) (string, error) {
	dir := filepath.Join(s.baseDir, verifySubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	name := fmt.Sprintf("%d-%d.%s", ownerID, s.now().UnixMilli(), ext)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return "/uploads/" + verifySubdir + "/" + name, nil
}

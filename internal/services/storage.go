package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sisgic/backend/internal/config"
)

// ObjectStore is the attachment byte store. The disk implementation below is
// the default; tests substitute failing stores to exercise the ordered
// delete and compensation paths.
type ObjectStore interface {
	// Put stores the object under path, creating parent prefixes as needed.
	Put(path string, r io.Reader) error
	// Remove deletes the stored objects at the given paths.
	Remove(paths ...string) error
	// Exists reports whether an object is stored under path.
	Exists(path string) (bool, error)
	// List returns all stored object paths under the bucket.
	List() ([]string, error)
	// PublicURL derives the public download URL for a stored path.
	PublicURL(path string) string
}

// DiskStore keeps objects on the local filesystem under root/bucket and
// serves them back through the /files/<bucket>/<path> route.
type DiskStore struct {
	root    string
	bucket  string
	baseURL string
}

func NewDiskStore(cfg *config.StorageConfig, baseURL string) *DiskStore {
	return &DiskStore{
		root:    cfg.Root,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Bucket returns the bucket name objects are namespaced under.
func (s *DiskStore) Bucket() string { return s.bucket }

// Dir returns the on-disk directory backing the bucket, for static serving.
func (s *DiskStore) Dir() string { return filepath.Join(s.root, s.bucket) }

func (s *DiskStore) fullPath(path string) (string, error) {
	// A path that cleaning rewrites is trying to escape the bucket
	if path == "" || filepath.Clean("/"+path) != "/"+path {
		return "", fmt.Errorf("invalid storage path: %s", path)
	}
	return filepath.Join(s.root, s.bucket, path), nil
}

func (s *DiskStore) Put(path string, r io.Reader) error {
	full, err := s.fullPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}

	f, err := os.Create(full)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(full)
		return err
	}
	return nil
}

func (s *DiskStore) Remove(paths ...string) error {
	for _, path := range paths {
		full, err := s.fullPath(path)
		if err != nil {
			return err
		}
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (s *DiskStore) Exists(path string) (bool, error) {
	full, err := s.fullPath(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *DiskStore) List() ([]string, error) {
	base := filepath.Join(s.root, s.bucket)
	var paths []string

	err := filepath.Walk(base, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (s *DiskStore) PublicURL(path string) string {
	return fmt.Sprintf("%s/files/%s/%s", s.baseURL, s.bucket, path)
}

// ObjectKey builds the storage path for a new attachment:
// task_<id>/<uuid>_<filename>. The uuid prefix keeps same-named uploads from
// colliding.
func ObjectKey(taskID uint, fileName string) string {
	safe := strings.ReplaceAll(filepath.Base(fileName), " ", "_")
	return fmt.Sprintf("task_%d/%s_%s", taskID, uuid.NewString(), safe)
}

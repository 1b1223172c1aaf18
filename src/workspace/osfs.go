package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// OSFileSystem implements FileSystem on the real file system, rooted at
// a workspace directory. Relative /-separated paths are resolved under
// the root; nothing outside the root is ever touched.
type OSFileSystem struct {
	root string
}

func NewOSFileSystem(root string) *OSFileSystem {
	return &OSFileSystem{root: root}
}

func (f *OSFileSystem) Root() string {
	return f.root
}

func (f *OSFileSystem) resolve(path string) string {
	return filepath.Join(f.root, filepath.FromSlash(path))
}

func (f *OSFileSystem) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(f.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func (f *OSFileSystem) WriteFile(path string, data []byte) error {
	full := f.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (f *OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(f.resolve(path))
	return err == nil
}

func (f *OSFileSystem) MkdirAll(path string) error {
	if err := os.MkdirAll(f.resolve(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

func (f *OSFileSystem) ReadDir(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(f.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}
	result := make([]DirEntry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, DirEntry{
			Name:  entry.Name(),
			IsDir: entry.IsDir(),
		})
	}
	return result, nil
}

func (f *OSFileSystem) Remove(path string) error {
	if err := os.Remove(f.resolve(path)); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

package save

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend stores the record as a single file. Writes go to a temporary
// file in the same directory which is then renamed over the target, so a
// crash never leaves a half-written save behind.
type FileBackend struct {
	path     string
	lockFile *os.File
}

// NewFileBackend creates the parent directory and takes an exclusive lock on
// path + ".lock". A second process opening the same save gets ErrWouldBlock.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("save path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}

	lockFile, err := acquireFileLock(path + ".lock")
	if err != nil {
		return nil, fmt.Errorf("failed to acquire save lock: %w", err)
	}
	return &FileBackend{path: path, lockFile: lockFile}, nil
}

// Path returns the save file location.
func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) Read() ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}
	return data, nil
}

func (b *FileBackend) Write(data []byte) error {
	if err := atomicWriteFile(b.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	return nil
}

func (b *FileBackend) Remove() error {
	if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove save file: %w", err)
	}
	return nil
}

// Close releases the save lock. It is safe to call more than once.
func (b *FileBackend) Close() error {
	if b.lockFile == nil {
		return nil
	}
	if err := releaseFileLock(b.lockFile); err != nil {
		return fmt.Errorf("failed to release save lock: %w", err)
	}
	b.lockFile = nil
	return nil
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var _ Backend = (*FileBackend)(nil)

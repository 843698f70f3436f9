package session

import (
	"context"
	"os"
)

// FileBackend keeps the session record in a single JSON file, the
// default durable backing.
type FileBackend struct {
	path string
}

// NewFileBackend returns a FileBackend writing to path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoRecord
		}
		return nil, err
	}
	return data, nil
}

func (b *FileBackend) Write(ctx context.Context, data []byte) error {
	return os.WriteFile(b.path, data, 0o600)
}

func (b *FileBackend) Delete(ctx context.Context) error {
	err := os.Remove(b.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

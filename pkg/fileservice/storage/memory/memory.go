package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"time"

	"github.com/tendant/simple-fileservice/pkg/fileservice"
)

// Backend is an in-memory implementation of the fileservice.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

type object struct {
	data      []byte
	updatedAt time.Time
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string]object),
	}
}

// Upload stores the reader's content. Nothing is stored if reading fails.
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = object{data: data, updatedAt: time.Now()}
	return nil
}

// Download returns a reader over a copy of the stored bytes
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, *fileservice.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[key]
	if !exists {
		return nil, nil, fmt.Errorf("object %q: %w", key, fs.ErrNotExist)
	}

	meta := &fileservice.ObjectMeta{
		Key:       key,
		Size:      int64(len(obj.data)),
		UpdatedAt: obj.updatedAt,
	}
	return io.NopCloser(bytes.NewReader(obj.data)), meta, nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[key]; !exists {
		return fmt.Errorf("object %q: %w", key, fs.ErrNotExist)
	}

	delete(b.objects, key)
	return nil
}

// List returns the stored keys
func (b *Backend) List(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.objects))
	for key := range b.objects {
		keys = append(keys, key)
	}
	return keys, nil
}

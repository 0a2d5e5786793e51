package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/simple-fileservice/pkg/fileservice"
)

// Backend is a filesystem implementation of the fileservice.BlobStore
// interface over a single flat directory
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Directory holding the files
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	// Validate and create base directory if it doesn't exist
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{baseDir: config.BaseDir}, nil
}

// BaseDir returns the directory the backend stores files in
func (b *Backend) BaseDir() string {
	return b.baseDir
}

// path resolves key to a file directly under baseDir
func (b *Backend) path(key string) (string, error) {
	if err := fileservice.ValidateName(key); err != nil {
		return "", err
	}
	if !filepath.IsLocal(key) {
		return "", fmt.Errorf("%w: %q", fileservice.ErrInvalidName, key)
	}
	return filepath.Join(b.baseDir, key), nil
}

// openRoot validates key and opens the base directory as an os.Root, which
// refuses to resolve anything outside it.
func (b *Backend) openRoot(key string) (*os.Root, error) {
	if _, err := b.path(key); err != nil {
		return nil, err
	}
	root, err := os.OpenRoot(b.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open base directory: %w", err)
	}
	return root, nil
}

// checkRegular rejects entries that are not regular files. Symlinks are
// refused even when they point inside the base directory, matching List.
func checkRegular(root *os.Root, key string) error {
	info, err := root.Lstat(key)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return &fileservice.PermissionDeniedError{Key: key, Err: fileservice.ErrInvalidName}
	}
	return nil
}

// Upload writes the reader's content to a temporary file in the same
// directory and renames it over key, so readers see either the old file or
// the complete new one. An existing entry that is not a regular file is
// left alone.
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader) error {
	root, err := b.openRoot(key)
	if err != nil {
		return err
	}
	defer root.Close()

	if err := checkRegular(root, key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	filePath := filepath.Join(b.baseDir, key)

	tmp, err := os.CreateTemp(b.baseDir, fileservice.TempPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: reader}); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	// Rename replaces the directory entry itself and never writes through a
	// link that appeared after the check.
	if err := os.Rename(tmpPath, filePath); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	success = true
	return nil
}

// Download opens a regular file under the base directory and stats the open
// handle
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, *fileservice.ObjectMeta, error) {
	root, err := b.openRoot(key)
	if err != nil {
		return nil, nil, err
	}
	defer root.Close()

	if err := checkRegular(root, key); err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	file, err := root.Open(key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to get file info: %w", err)
	}
	if !info.Mode().IsRegular() {
		file.Close()
		return nil, nil, &fileservice.PermissionDeniedError{Key: key, Err: fileservice.ErrInvalidName}
	}

	meta := &fileservice.ObjectMeta{
		Key:       key,
		Size:      info.Size(),
		UpdatedAt: info.ModTime(),
	}
	return file, meta, nil
}

// Delete deletes a regular file from the base directory
func (b *Backend) Delete(ctx context.Context, key string) error {
	root, err := b.openRoot(key)
	if err != nil {
		return err
	}
	defer root.Close()

	if err := checkRegular(root, key); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if err := root.Remove(key); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// List returns the regular files in the base directory. In-flight uploads
// are skipped.
func (b *Backend) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(b.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), fileservice.TempPrefix) {
			continue
		}
		keys = append(keys, entry.Name())
	}
	return keys, nil
}

// ctxReader stops a copy once the context is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

package fileservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultMaxFileSize is the size limit used when none is configured
	DefaultMaxFileSize int64 = 1024 * 1024

	// DefaultBatchConcurrency bounds parallel batch items when none is configured
	DefaultBatchConcurrency = 4
)

// ContentStore caches decoded file content in front of a BlobStore.
//
// The cache never evicts on its own; entries leave only through Delete, an
// oversized or failed Write, or process teardown. Every key present in the
// cache was read from or written to the blob store by the most recent
// successful operation on that key.
type ContentStore struct {
	blob             BlobStore
	maxFileSize      int64
	batchConcurrency int
	now              func() time.Time

	locks *keyLocks
	loads singleflight.Group

	mu    sync.RWMutex
	cache map[string]*CachedEntry

	hits   atomic.Uint64
	misses atomic.Uint64
}

// StoreOption configures a ContentStore
type StoreOption func(*ContentStore)

// WithMaxFileSize sets the largest file, in bytes, the store will read
func WithMaxFileSize(n int64) StoreOption {
	return func(s *ContentStore) {
		s.maxFileSize = n
	}
}

// WithBatchConcurrency sets how many batch items may run at once
func WithBatchConcurrency(n int) StoreOption {
	return func(s *ContentStore) {
		s.batchConcurrency = n
	}
}

// WithClock overrides the time source used for CachedEntry.LastLoaded
func WithClock(now func() time.Time) StoreOption {
	return func(s *ContentStore) {
		s.now = now
	}
}

// NewContentStore creates a content store over the given blob store
func NewContentStore(blob BlobStore, opts ...StoreOption) (*ContentStore, error) {
	if blob == nil {
		return nil, errors.New("blob store is required")
	}

	s := &ContentStore{
		blob:             blob,
		maxFileSize:      DefaultMaxFileSize,
		batchConcurrency: DefaultBatchConcurrency,
		now:              time.Now,
		locks:            newKeyLocks(),
		cache:            make(map[string]*CachedEntry),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.maxFileSize <= 0 {
		return nil, fmt.Errorf("max file size must be positive, got %d", s.maxFileSize)
	}
	if s.batchConcurrency <= 0 {
		return nil, fmt.Errorf("batch concurrency must be positive, got %d", s.batchConcurrency)
	}

	return s, nil
}

// MaxFileSize returns the configured size limit in bytes
func (s *ContentStore) MaxFileSize() int64 {
	return s.maxFileSize
}

// Read returns the content of name, from the cache when present.
func (s *ContentStore) Read(ctx context.Context, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	unlock := s.locks.RLock(name)
	defer unlock()

	if entry, ok := s.lookup(name); ok {
		s.hits.Add(1)
		return entry.Content, nil
	}
	s.misses.Add(1)

	// Concurrent misses on the same key share one load. The shared load must
	// not fail because the first caller went away.
	v, err, _ := s.loads.Do(name, func() (interface{}, error) {
		return s.load(context.WithoutCancel(ctx), name)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// load reads name from the blob store and caches it. Callers hold the key's
// read lock.
func (s *ContentStore) load(ctx context.Context, name string) (string, error) {
	reader, meta, err := s.blob.Download(ctx, name)
	if err != nil {
		return "", classify("read", name, err)
	}
	defer reader.Close()

	if meta != nil && meta.Size > s.maxFileSize {
		return "", &TooLargeError{Key: name, Actual: meta.Size, Limit: s.maxFileSize}
	}

	data, err := io.ReadAll(io.LimitReader(reader, s.maxFileSize+1))
	if err != nil {
		return "", classify("read", name, err)
	}
	// The file grew between stat and read.
	if int64(len(data)) > s.maxFileSize {
		return "", &TooLargeError{Key: name, Actual: int64(len(data)), Limit: s.maxFileSize}
	}
	if !utf8.Valid(data) {
		return "", &InvalidEncodingError{Key: name}
	}

	content := string(data)
	s.put(name, content)
	return content, nil
}

// Write stores content under name and refreshes the cache entry. Content
// larger than the size limit is written but not cached.
func (s *ContentStore) Write(ctx context.Context, name, content string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	unlock := s.locks.Lock(name)
	defer unlock()

	if err := s.blob.Upload(ctx, name, strings.NewReader(content)); err != nil {
		s.evict(name)
		return classify("write", name, err)
	}

	if int64(len(content)) > s.maxFileSize {
		s.evict(name)
		return nil
	}
	s.put(name, content)
	return nil
}

// Delete removes name from the blob store. The cache entry is dropped
// whatever the outcome, including when the file was already absent.
//
// Besides NotFound and IOError, Delete returns PermissionDeniedError wrapping
// ErrInvalidName when name is rejected before touching storage (traversal,
// separators, temp prefix) or when the entry under name is not a regular
// file, such as a symlink. A storage-level permission failure is an IOError.
func (s *ContentStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	unlock := s.locks.Lock(name)
	defer unlock()

	err := s.blob.Delete(ctx, name)
	s.evict(name)
	if err != nil {
		return classify("delete", name, err)
	}
	return nil
}

// List returns the names stored under the base directory, sorted. The slice
// is freshly allocated on every call.
func (s *ContentStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.blob.List(ctx)
	if err != nil {
		return nil, &IOError{Op: "list", Err: err}
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if ValidateName(key) != nil {
			continue
		}
		names = append(names, key)
	}
	sort.Strings(names)
	return names, nil
}

// Match returns the stored names matching a doublestar glob pattern
func (s *ContentStore) Match(ctx context.Context, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", doublestar.ErrBadPattern, pattern)
	}

	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := names[:0]
	for _, name := range names {
		if ok, _ := doublestar.Match(pattern, name); ok {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

// Cached returns a copy of the cache entry for name
func (s *ContentStore) Cached(name string) (CachedEntry, bool) {
	entry, ok := s.lookup(name)
	if !ok {
		return CachedEntry{}, false
	}
	return *entry, true
}

// Stats returns a snapshot of cache counters
func (s *ContentStore) Stats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := CacheStats{
		Entries: len(s.cache),
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}
	for _, entry := range s.cache {
		stats.Bytes += entry.Size
	}
	return stats
}

func (s *ContentStore) lookup(name string) (*CachedEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[name]
	return entry, ok
}

func (s *ContentStore) put(name, content string) {
	entry := &CachedEntry{
		Name:       name,
		Content:    content,
		Size:       int64(len(content)),
		LastLoaded: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[name] = entry
}

func (s *ContentStore) evict(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, name)
}

// classify maps a blob store error onto the error model. Each operation only
// reports the kinds its contract allows; anything else becomes an IOError
// that still unwraps to the original cause. Names the backend refused are
// already PermissionDeniedError and pass through unchanged.
func classify(op, name string, err error) error {
	var denied *PermissionDeniedError
	switch {
	case errors.As(err, &denied):
		return denied
	case errors.Is(err, fs.ErrNotExist) && op != "write":
		return &NotFoundError{Resource: "file", Key: name}
	case errors.Is(err, fs.ErrPermission) && op != "delete":
		return &PermissionDeniedError{Key: name, Err: err}
	default:
		return &IOError{Op: op, Key: name, Err: err}
	}
}

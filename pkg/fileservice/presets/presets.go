// Package presets builds ready-to-use services for common setups so callers
// can skip wiring stores and registries by hand.
package presets

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/tendant/simple-fileservice/pkg/fileservice"
	"github.com/tendant/simple-fileservice/pkg/fileservice/repo/memory"
	fsstorage "github.com/tendant/simple-fileservice/pkg/fileservice/storage/fs"
	memorystorage "github.com/tendant/simple-fileservice/pkg/fileservice/storage/memory"
	"github.com/tendant/simple-fileservice/pkg/fileservice/transform"
)

// NewDevelopment creates a service for local development backed by the
// filesystem at ./dev-data. The returned cleanup function removes that
// directory.
//
// Example:
//
//	svc, cleanup, err := presets.NewDevelopment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
func NewDevelopment(opts ...DevelopmentOption) (fileservice.Service, func(), error) {
	cfg := &devConfig{
		storageDir: "./dev-data",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	blob, err := fsstorage.New(fsstorage.Config{BaseDir: cfg.storageDir})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create filesystem storage: %w", err)
	}

	store, err := fileservice.NewContentStore(blob)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create content store: %w", err)
	}

	svc, err := fileservice.New(
		fileservice.WithContentStore(store),
		fileservice.WithUserRegistry(memory.New()),
		fileservice.WithPipeline(transform.New(cfg.rules...)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create service: %w", err)
	}

	cleanup := func() {
		os.RemoveAll(cfg.storageDir)
	}

	return svc, cleanup, nil
}

// NewTesting creates an isolated in-memory service for tests. Files given
// with WithTestFiles are written before it is returned.
//
//	func TestMyFeature(t *testing.T) {
//	    svc := presets.NewTesting(t, presets.WithTestFiles(map[string]string{"a.txt": "hi"}))
//	    ...
//	}
func NewTesting(t testing.TB, opts ...TestingOption) fileservice.Service {
	t.Helper()

	cfg := &testConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	store, err := fileservice.NewContentStore(memorystorage.New(), cfg.storeOpts...)
	if err != nil {
		t.Fatalf("failed to create test content store: %v", err)
	}

	svc, err := fileservice.New(
		fileservice.WithContentStore(store),
		fileservice.WithUserRegistry(memory.New()),
		fileservice.WithPipeline(transform.New(cfg.rules...)),
	)
	if err != nil {
		t.Fatalf("failed to create test service: %v", err)
	}

	for name, content := range cfg.files {
		if err := svc.WriteFile(context.Background(), name, content); err != nil {
			t.Fatalf("failed to write fixture %s: %v", name, err)
		}
	}

	return svc
}

// TestService is NewTesting with no options
func TestService(t testing.TB) fileservice.Service {
	t.Helper()
	return NewTesting(t)
}

type devConfig struct {
	storageDir string
	rules      []transform.Rule
}

type testConfig struct {
	files     map[string]string
	rules     []transform.Rule
	storeOpts []fileservice.StoreOption
}

// DevelopmentOption is a functional option for NewDevelopment
type DevelopmentOption func(*devConfig)

// WithDevStorage sets the development storage directory
func WithDevStorage(dir string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.storageDir = dir
	}
}

// WithDevRules seeds the transform pipeline
func WithDevRules(rules ...transform.Rule) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.rules = append(cfg.rules, rules...)
	}
}

// TestingOption is a functional option for NewTesting
type TestingOption func(*testConfig)

// WithTestFiles writes the given files into the new service
func WithTestFiles(files map[string]string) TestingOption {
	return func(cfg *testConfig) {
		cfg.files = files
	}
}

// WithTestRules seeds the transform pipeline
func WithTestRules(rules ...transform.Rule) TestingOption {
	return func(cfg *testConfig) {
		cfg.rules = append(cfg.rules, rules...)
	}
}

// WithTestStoreOptions passes options to the content store, such as a small
// size limit.
func WithTestStoreOptions(opts ...fileservice.StoreOption) TestingOption {
	return func(cfg *testConfig) {
		cfg.storeOpts = append(cfg.storeOpts, opts...)
	}
}

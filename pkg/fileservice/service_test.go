package fileservice_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-fileservice/pkg/fileservice"
	"github.com/tendant/simple-fileservice/pkg/fileservice/repo/memory"
	memorystorage "github.com/tendant/simple-fileservice/pkg/fileservice/storage/memory"
	"github.com/tendant/simple-fileservice/pkg/fileservice/transform"
)

type recordingSink struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (r *recordingSink) record(event string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingSink) FileWritten(ctx context.Context, name string, size int64) error {
	return r.record("written:" + name)
}

func (r *recordingSink) FileDeleted(ctx context.Context, name string) error {
	return r.record("deleted:" + name)
}

func (r *recordingSink) UserCreated(ctx context.Context, user *fileservice.User) error {
	return r.record("user_created:" + user.Email)
}

func (r *recordingSink) UserUpdated(ctx context.Context, user *fileservice.User) error {
	return r.record("user_updated:" + user.Email)
}

func newTestService(t *testing.T, opts ...fileservice.Option) fileservice.Service {
	t.Helper()
	store, err := fileservice.NewContentStore(memorystorage.New())
	require.NoError(t, err)

	opts = append([]fileservice.Option{
		fileservice.WithContentStore(store),
		fileservice.WithUserRegistry(memory.New()),
	}, opts...)
	svc, err := fileservice.New(opts...)
	require.NoError(t, err)
	return svc
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := fileservice.New()
	assert.Error(t, err)

	store, err := fileservice.NewContentStore(memorystorage.New())
	require.NoError(t, err)
	_, err = fileservice.New(fileservice.WithContentStore(store))
	assert.Error(t, err)
}

func TestService_FileLifecycle(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	svc := newTestService(t, fileservice.WithEventSink(sink))

	require.NoError(t, svc.WriteFile(ctx, "a.txt", "alpha"))
	require.NoError(t, svc.WriteFile(ctx, "b.md", "bravo"))

	content, err := svc.ReadFile(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "alpha", content)

	names, err := svc.ListFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.md"}, names)

	matched, err := svc.MatchFiles(ctx, "*.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.md"}, matched)

	require.NoError(t, svc.DeleteFile(ctx, "a.txt"))
	err = svc.DeleteFile(ctx, "a.txt")
	assert.True(t, errors.Is(err, fileservice.ErrNotFound))

	assert.Equal(t, []string{"written:a.txt", "written:b.md", "deleted:a.txt"}, sink.events)
	assert.Equal(t, 1, svc.CacheStats().Entries)
}

func TestService_SinkErrorsDoNotFailOperations(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{err: errors.New("sink down")}
	svc := newTestService(t, fileservice.WithEventSink(sink))

	require.NoError(t, svc.WriteFile(ctx, "a.txt", "x"))
	_, err := svc.AddUser(ctx, "Alice", "alice@example.com", "")
	require.NoError(t, err)
	assert.Len(t, sink.events, 2)
}

func TestService_TransformFile(t *testing.T) {
	ctx := context.Background()
	pipeline := transform.New(transform.Rule{Pattern: "world", Replacement: "gopher"})
	svc := newTestService(t, fileservice.WithPipeline(pipeline))

	require.NoError(t, svc.WriteFile(ctx, "greeting.txt", "hello world"))

	out, err := svc.TransformFile(ctx, "greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello gopher", out)

	svc.AddRule("hello", "hi")
	out, err = svc.TransformFile(ctx, "greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi gopher", out)
	assert.Equal(t, []transform.Rule{
		{Pattern: "world", Replacement: "gopher"},
		{Pattern: "hello", Replacement: "hi"},
	}, svc.Rules())

	// The stored file is unchanged.
	content, err := svc.ReadFile(ctx, "greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", content)

	_, err = svc.TransformFile(ctx, "missing.txt")
	assert.True(t, errors.Is(err, fileservice.ErrNotFound))
}

func TestService_BaseTransformerRunsFirst(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t,
		fileservice.WithBaseTransformer(transform.Default()),
		fileservice.WithPipeline(transform.New(transform.Rule{Pattern: "HELLO", Replacement: "HI"})),
	)
	require.NoError(t, svc.WriteFile(ctx, "a", "hello big world"))

	out, err := svc.TransformFile(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "HI_BIG_WORLD", out)
}

func TestService_ProcessBatchUsesPipeline(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, fileservice.WithPipeline(transform.New(transform.Rule{Pattern: "a", Replacement: "4"})))
	require.NoError(t, svc.WriteFile(ctx, "one", "banana"))

	results := svc.ProcessBatch(ctx, []string{"one", "two"})
	require.Len(t, results, 2)
	assert.Equal(t, "b4n4n4", results[0].Content)
	assert.True(t, errors.Is(results[1].Err, fileservice.ErrNotFound))
}

func TestService_Users(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	svc := newTestService(t, fileservice.WithEventSink(sink))

	user, err := svc.AddUser(ctx, "Alice", "Alice@Example.com", "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = svc.AddUser(ctx, "Other", "alice@example.com", "")
	assert.True(t, errors.Is(err, fileservice.ErrDuplicateEmail))

	updated, err := svc.UpdateUser(ctx, user.ID, "Alice B", "aliceb@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)

	found, err := svc.FindUserByEmail(ctx, "aliceb@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = svc.UpdateUser(ctx, 7, "x", "x@example.com")
	assert.True(t, errors.Is(err, fileservice.ErrNotFound))

	assert.Equal(t, []string{"user_created:alice@example.com", "user_updated:aliceb@example.com"}, sink.events)
}

package fileservice

import (
	"context"
	"fmt"

	"github.com/tendant/simple-fileservice/pkg/fileservice/transform"
)

// service implements the Service interface
type service struct {
	store     *ContentStore
	users     UserRegistry
	pipeline  *transform.Pipeline
	base      Transformer
	eventSink EventSink
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithContentStore sets the content store for the service
func WithContentStore(store *ContentStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithUserRegistry sets the user registry for the service
func WithUserRegistry(users UserRegistry) Option {
	return func(s *service) {
		s.users = users
	}
}

// WithPipeline sets the rule pipeline used by TransformFile and ProcessBatch
func WithPipeline(p *transform.Pipeline) Option {
	return func(s *service) {
		s.pipeline = p
	}
}

// WithBaseTransformer sets a transformer applied before the rule pipeline
func WithBaseTransformer(t Transformer) Option {
	return func(s *service) {
		s.base = t
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.store == nil {
		return nil, fmt.Errorf("content store is required")
	}
	if s.users == nil {
		return nil, fmt.Errorf("user registry is required")
	}
	if s.pipeline == nil {
		s.pipeline = transform.New()
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}

	return s, nil
}

// File operations

func (s *service) ReadFile(ctx context.Context, name string) (string, error) {
	return s.store.Read(ctx, name)
}

func (s *service) WriteFile(ctx context.Context, name, content string) error {
	if err := s.store.Write(ctx, name, content); err != nil {
		return err
	}
	// Sink failures never fail the operation
	_ = s.eventSink.FileWritten(ctx, name, int64(len(content)))
	return nil
}

func (s *service) DeleteFile(ctx context.Context, name string) error {
	if err := s.store.Delete(ctx, name); err != nil {
		return err
	}
	_ = s.eventSink.FileDeleted(ctx, name)
	return nil
}

func (s *service) ListFiles(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

func (s *service) MatchFiles(ctx context.Context, pattern string) ([]string, error) {
	return s.store.Match(ctx, pattern)
}

// Transform operations

func (s *service) TransformFile(ctx context.Context, name string) (string, error) {
	content, err := s.store.Read(ctx, name)
	if err != nil {
		return "", err
	}
	return s.transformer().Apply(content), nil
}

func (s *service) ProcessBatch(ctx context.Context, names []string) []BatchResult {
	return s.store.ProcessBatch(ctx, names, s.transformer())
}

func (s *service) AddRule(pattern, replacement string) {
	s.pipeline.AddRule(pattern, replacement)
}

func (s *service) Rules() []transform.Rule {
	return s.pipeline.Rules()
}

func (s *service) transformer() Transformer {
	if s.base == nil {
		return s.pipeline
	}
	return transform.Chain(s.base, s.pipeline)
}

func (s *service) CacheStats() CacheStats {
	return s.store.Stats()
}

// User operations

func (s *service) AddUser(ctx context.Context, name, email, profile string) (*User, error) {
	id, err := s.users.AddUser(ctx, name, email, profile)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.eventSink.UserCreated(ctx, user)
	return user, nil
}

func (s *service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.users.GetUser(ctx, id)
}

func (s *service) UpdateUser(ctx context.Context, id int64, name, email string) (*User, error) {
	if err := s.users.UpdateUser(ctx, id, name, email); err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.eventSink.UserUpdated(ctx, user)
	return user, nil
}

func (s *service) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.users.FindUserByEmail(ctx, email)
}

func (s *service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.users.ListUsers(ctx)
}

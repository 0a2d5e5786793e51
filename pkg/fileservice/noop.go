package fileservice

import "context"

// NoopEventSink is a no-operation implementation of EventSink
// Useful when you don't need event handling or for testing
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// FileWritten does nothing and returns nil
func (n *NoopEventSink) FileWritten(ctx context.Context, name string, size int64) error {
	return nil
}

// FileDeleted does nothing and returns nil
func (n *NoopEventSink) FileDeleted(ctx context.Context, name string) error {
	return nil
}

// UserCreated does nothing and returns nil
func (n *NoopEventSink) UserCreated(ctx context.Context, user *User) error {
	return nil
}

// UserUpdated does nothing and returns nil
func (n *NoopEventSink) UserUpdated(ctx context.Context, user *User) error {
	return nil
}

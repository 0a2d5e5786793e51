package fileservice

import (
	"context"
	"io"
	"time"
)

// BlobStore defines the interface for storage backends.
//
// Implementations report a missing key with an error wrapping fs.ErrNotExist
// and a refused access with an error wrapping fs.ErrPermission; the content
// store classifies everything else as an IO failure.
type BlobStore interface {
	// Upload replaces the object under key with the reader's content. A
	// failed upload must leave the previous object (or none) visible.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Download opens the object and returns its metadata taken from the
	// same handle
	Download(ctx context.Context, key string) (io.ReadCloser, *ObjectMeta, error)

	// Delete removes the object
	Delete(ctx context.Context, key string) error

	// List returns the keys currently stored
	List(ctx context.Context) ([]string, error)
}

// UserRegistry owns user records with unique ids and unique emails.
type UserRegistry interface {
	AddUser(ctx context.Context, name, email, profile string) (int64, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	UpdateUser(ctx context.Context, id int64, name, email string) error
	// FindUserByEmail matches the normalized (lower-cased) email
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
}

// Transformer rewrites text content. Apply must be pure and deterministic.
type Transformer interface {
	Apply(content string) string
}

// EventSink defines the interface for event handling
type EventSink interface {
	// FileWritten is fired after a successful write
	FileWritten(ctx context.Context, name string, size int64) error

	// FileDeleted is fired after a successful delete
	FileDeleted(ctx context.Context, name string) error

	// UserCreated is fired after a user is registered
	UserCreated(ctx context.Context, user *User) error

	// UserUpdated is fired after a user is changed
	UserUpdated(ctx context.Context, user *User) error
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key       string
	Size      int64
	UpdatedAt time.Time
}

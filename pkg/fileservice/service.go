package fileservice

import (
	"context"

	"github.com/tendant/simple-fileservice/pkg/fileservice/transform"
)

// Service defines the main interface for the fileservice library
type Service interface {
	// File operations
	ReadFile(ctx context.Context, name string) (string, error)
	WriteFile(ctx context.Context, name, content string) error
	DeleteFile(ctx context.Context, name string) error
	ListFiles(ctx context.Context) ([]string, error)
	MatchFiles(ctx context.Context, pattern string) ([]string, error)

	// Transform operations
	TransformFile(ctx context.Context, name string) (string, error)
	ProcessBatch(ctx context.Context, names []string) []BatchResult
	AddRule(pattern, replacement string)
	Rules() []transform.Rule

	// Cache inspection
	CacheStats() CacheStats

	// User operations
	AddUser(ctx context.Context, name, email, profile string) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	UpdateUser(ctx context.Context, id int64, name, email string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
}

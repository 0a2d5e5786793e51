// Package events provides fileservice.EventSink implementations.
package events

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tendant/simple-fileservice/pkg/fileservice"
)

// LoggingSink writes every lifecycle event to a structured logger
type LoggingSink struct {
	logger *slog.Logger
}

// NewLoggingSink creates a sink logging to logger, or slog.Default() if nil
func NewLoggingSink(logger *slog.Logger) *LoggingSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingSink{logger: logger.With("component", "events")}
}

func (l *LoggingSink) FileWritten(ctx context.Context, name string, size int64) error {
	l.logger.InfoContext(ctx, "File written", "name", name, "size", size)
	return nil
}

func (l *LoggingSink) FileDeleted(ctx context.Context, name string) error {
	l.logger.InfoContext(ctx, "File deleted", "name", name)
	return nil
}

func (l *LoggingSink) UserCreated(ctx context.Context, user *fileservice.User) error {
	l.logger.InfoContext(ctx, "User created", "user_id", user.ID, "email", user.Email)
	return nil
}

func (l *LoggingSink) UserUpdated(ctx context.Context, user *fileservice.User) error {
	l.logger.InfoContext(ctx, "User updated", "user_id", user.ID, "email", user.Email)
	return nil
}

// Multi fans events out to several sinks. Every sink sees every event; the
// errors are joined.
type Multi []fileservice.EventSink

func (m Multi) FileWritten(ctx context.Context, name string, size int64) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.FileWritten(ctx, name, size))
	}
	return errors.Join(errs...)
}

func (m Multi) FileDeleted(ctx context.Context, name string) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.FileDeleted(ctx, name))
	}
	return errors.Join(errs...)
}

func (m Multi) UserCreated(ctx context.Context, user *fileservice.User) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.UserCreated(ctx, user))
	}
	return errors.Join(errs...)
}

func (m Multi) UserUpdated(ctx context.Context, user *fileservice.User) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.UserUpdated(ctx, user))
	}
	return errors.Join(errs...)
}

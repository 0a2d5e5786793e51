// Package fileservice provides a reusable library for reading, writing and
// transforming named text files with a content cache in front of a pluggable
// blob store, plus a small in-memory user registry.
//
// It exposes a single Service interface that composes a ContentStore, a
// UserRegistry and a transform pipeline. Blob stores (filesystem, memory,
// S3) live under storage/, the registry under repo/memory.
//
// Errors
//
// Every fallible operation returns one of a closed set of error kinds
// (NotFound, TooLarge, PermissionDenied, InvalidEncoding, IO, DuplicateEmail,
// InvalidEmail, ConfigMissing). Match them with errors.Is against the
// exported sentinels or use KindOf for a stable string. The library never
// logs and never retries; both belong to the caller.
package fileservice

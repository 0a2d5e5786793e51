package fileservice

import "time"

// CachedEntry is a decoded file held by the content store. Callers only ever
// receive copies.
type CachedEntry struct {
	Name       string
	Content    string
	Size       int64
	LastLoaded time.Time
}

// CacheStats summarizes the content cache
type CacheStats struct {
	Entries int
	Bytes   int64
	Hits    uint64
	Misses  uint64
}

// User is a registered user. Values returned by a UserRegistry are
// independent copies.
type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Profile string `json:"profile"`
}

// BatchResult is the outcome of one item of a batch. Exactly one of Content
// and Err is meaningful.
type BatchResult struct {
	Name    string
	Content string
	Err     error
}

// OK reports whether the item succeeded
func (r BatchResult) OK() bool {
	return r.Err == nil
}

package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/tendant/simple-fileservice/pkg/fileservice"
)

// Repository implements fileservice.UserRegistry using in-memory storage
type Repository struct {
	mu      sync.RWMutex
	users   map[int64]*fileservice.User
	byEmail map[string]int64 // normalized email -> user id
	nextID  int64
}

// New creates a new in-memory user registry
func New() fileservice.UserRegistry {
	return &Repository{
		users:   make(map[int64]*fileservice.User),
		byEmail: make(map[string]int64),
		nextID:  1,
	}
}

// AddUser validates the email and registers a new user. No id is consumed
// when validation fails.
func (r *Repository) AddUser(ctx context.Context, name, email, profile string) (int64, error) {
	normalized, err := fileservice.NormalizeEmail(email)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[normalized]; taken {
		return 0, &fileservice.DuplicateEmailError{Email: normalized}
	}

	id := r.nextID
	r.nextID++
	r.users[id] = &fileservice.User{
		ID:      id,
		Name:    name,
		Email:   normalized,
		Profile: profile,
	}
	r.byEmail[normalized] = id

	return id, nil
}

func (r *Repository) GetUser(ctx context.Context, id int64) (*fileservice.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, notFound(id)
	}

	// Return a copy to prevent external modifications
	userCopy := *user
	return &userCopy, nil
}

// UpdateUser replaces the name and email of a user. The record is left
// unchanged when the new email is invalid or owned by another user.
func (r *Repository) UpdateUser(ctx context.Context, id int64, name, email string) error {
	normalized, err := fileservice.NormalizeEmail(email)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		return notFound(id)
	}
	if owner, taken := r.byEmail[normalized]; taken && owner != id {
		return &fileservice.DuplicateEmailError{Email: normalized}
	}

	delete(r.byEmail, user.Email)
	updated := *user
	updated.Name = name
	updated.Email = normalized
	r.users[id] = &updated
	r.byEmail[normalized] = id

	return nil
}

// FindUserByEmail looks up a user by normalized email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*fileservice.User, error) {
	normalized, err := fileservice.NormalizeEmail(email)
	if err != nil {
		return nil, &fileservice.NotFoundError{Resource: "user", Key: email}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byEmail[normalized]
	if !exists {
		return nil, &fileservice.NotFoundError{Resource: "user", Key: email}
	}
	userCopy := *r.users[id]
	return &userCopy, nil
}

// ListUsers returns copies of all users ordered by id
func (r *Repository) ListUsers(ctx context.Context) ([]*fileservice.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*fileservice.User, 0, len(r.users))
	for _, user := range r.users {
		userCopy := *user
		users = append(users, &userCopy)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func notFound(id int64) error {
	return &fileservice.NotFoundError{Resource: "user", Key: strconv.FormatInt(id, 10)}
}

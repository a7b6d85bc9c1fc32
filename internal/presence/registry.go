// Package presence keeps the two-way index between a user identity and the
// connection handle currently serving it.
package presence

import (
	"sort"
	"sync"
)

// Registry maps identities to handles. The newest Register for an identity
// wins; Unregister only removes a mapping whose handle is still current.
type Registry struct {
	mu       sync.RWMutex
	byUser   map[string]string
	byHandle map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byUser:   make(map[string]string),
		byHandle: make(map[string]string),
	}
}

// Register binds user to handle and returns the handle it replaced, if any.
// The replaced connection is not closed here.
func (r *Registry) Register(user, handle string) (previous string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byUser[user]; ok && old != handle {
		delete(r.byHandle, old)
		previous = old
	}
	// a handle serves one identity at a time
	if prevUser, ok := r.byHandle[handle]; ok && prevUser != user {
		delete(r.byUser, prevUser)
	}
	r.byUser[user] = handle
	r.byHandle[handle] = user
	return previous
}

// Lookup returns the current handle for user.
func (r *Registry) Lookup(user string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byUser[user]
	return h, ok
}

// UserOf returns the identity a handle is registered for.
func (r *Registry) UserOf(handle string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byHandle[handle]
	return u, ok
}

func (r *Registry) IsOnline(user string) bool {
	_, ok := r.Lookup(user)
	return ok
}

// Unregister drops handle. It returns the identity that went offline, or ""
// when handle was stale or unknown.
func (r *Registry) Unregister(handle string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byHandle[handle]
	if !ok {
		return ""
	}
	delete(r.byHandle, handle)
	if r.byUser[user] != handle {
		return ""
	}
	delete(r.byUser, user)
	return user
}

// Online lists the identities with a live handle, sorted.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.byUser))
	for u := range r.byUser {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

package store

import (
	"context"

	dom "github.com/Sebastian-411/microservice-app-example/internal/domain"
)

// TodoStore maps a username to that user's TodoList. Eviction and expiry are
// the backend's own policy; callers only get get/put semantics.
type TodoStore interface {
	// Get returns the stored list for username. ok is false on a miss.
	Get(ctx context.Context, username string) (list dom.TodoList, ok bool, err error)
	// Put stores the list for username, replacing any previous value.
	Put(ctx context.Context, username string, list dom.TodoList) error
}

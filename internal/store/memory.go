package store

import (
	"context"
	"sync"

	dom "github.com/Sebastian-411/microservice-app-example/internal/domain"
)

// MemoryStore keeps todo lists in process memory, like the node service this
// replaces did with memory-cache. Lists live until the process exits.
type MemoryStore struct {
	mu    sync.RWMutex
	lists map[string]dom.TodoList
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[string]dom.TodoList)}
}

func (s *MemoryStore) Get(ctx context.Context, username string) (dom.TodoList, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, ok := s.lists[username]
	if !ok {
		return dom.TodoList{}, false, nil
	}
	return cloneList(list), true, nil
}

func (s *MemoryStore) Put(ctx context.Context, username string, list dom.TodoList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[username] = cloneList(list)
	return nil
}

// cloneList copies the items map so callers never share it with the store.
func cloneList(list dom.TodoList) dom.TodoList {
	items := make(map[string]dom.TodoItem, len(list.Items))
	for k, v := range list.Items {
		items[k] = v
	}
	list.Items = items
	return list
}

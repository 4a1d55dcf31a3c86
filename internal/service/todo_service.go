package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/Sebastian-411/microservice-app-example/internal/audit"
	dom "github.com/Sebastian-411/microservice-app-example/internal/domain"
	"github.com/Sebastian-411/microservice-app-example/internal/metrics"
	"github.com/Sebastian-411/microservice-app-example/internal/store"
	"github.com/Sebastian-411/microservice-app-example/internal/tracing"

	"golang.org/x/sync/singleflight"
)

// TodoService orchestrates the three todo operations for an authenticated
// username: fetch or seed the user's list, apply the mutation, write back,
// and emit an audit event, all inside one trace scope per request.
type TodoService struct {
	store     store.TodoStore
	publisher audit.Publisher
	tracer    *tracing.Tracer
	sf        singleflight.Group

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTodoService creates a TodoService.
func NewTodoService(s store.TodoStore, p audit.Publisher, t *tracing.Tracer) *TodoService {
	return &TodoService{
		store:     s,
		publisher: p,
		tracer:    t,
		locks:     make(map[string]*sync.Mutex),
	}
}

// List returns all of the user's items in no particular order. The first
// call for a username seeds the default list.
func (s *TodoService) List(ctx context.Context, username string) ([]dom.TodoItem, error) {
	var items []dom.TodoItem
	err := s.tracer.Scoped(ctx, "list", func(ctx context.Context) error {
		// singleflight collapses concurrent reads; the user lock is held
		// because a first read may write the seed.
		v, err, _ := s.sf.Do(username, func() (interface{}, error) {
			unlock := s.lockUser(username)
			defer unlock()
			return s.fetchOrSeed(ctx, username)
		})
		if err != nil {
			return err
		}
		list := v.(dom.TodoList)
		items = make([]dom.TodoItem, 0, len(list.Items))
		for _, it := range list.Items {
			items = append(items, it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Create adds a new item with the next unused id and returns it. Content is
// stored as-is, empty included.
func (s *TodoService) Create(ctx context.Context, username, content string) (dom.TodoItem, error) {
	var created dom.TodoItem
	err := s.tracer.Scoped(ctx, "create", func(ctx context.Context) error {
		unlock := s.lockUser(username)
		defer unlock()

		list, err := s.fetchOrSeed(ctx, username)
		if err != nil {
			return err
		}
		id := list.LastInsertedID + 1
		created = dom.TodoItem{ID: id, Content: content}
		list.Items[dom.ItemKey(id)] = created
		list.LastInsertedID = id
		if err := s.store.Put(ctx, username, list); err != nil {
			return fmt.Errorf("put todos: %w", err)
		}
		s.logOperation(ctx, audit.OperationCreate, username, created.ID)
		return nil
	})
	if err != nil {
		return dom.TodoItem{}, err
	}
	return created, nil
}

// Delete removes the item with the given id. Deleting an id that is not
// there is a successful no-op; the list is written back either way.
func (s *TodoService) Delete(ctx context.Context, username, todoID string) error {
	return s.tracer.Scoped(ctx, "delete", func(ctx context.Context) error {
		unlock := s.lockUser(username)
		defer unlock()

		list, err := s.fetchOrSeed(ctx, username)
		if err != nil {
			return err
		}
		delete(list.Items, todoID)
		if err := s.store.Put(ctx, username, list); err != nil {
			return fmt.Errorf("put todos: %w", err)
		}
		s.logOperation(ctx, audit.OperationDelete, username, todoID)
		return nil
	})
}

// fetchOrSeed loads the user's list, creating and storing the default one on
// a miss.
func (s *TodoService) fetchOrSeed(ctx context.Context, username string) (dom.TodoList, error) {
	list, ok, err := s.store.Get(ctx, username)
	if err != nil {
		return dom.TodoList{}, fmt.Errorf("get todos: %w", err)
	}
	if ok {
		return list, nil
	}
	list = dom.DefaultTodoList()
	if err := s.store.Put(ctx, username, list); err != nil {
		return dom.TodoList{}, fmt.Errorf("seed todos: %w", err)
	}
	return list, nil
}

// logOperation publishes an audit event carrying the span id active in ctx.
// Publish failures are counted and logged, never surfaced to the caller: the
// response for the mutation is already decided by the time we get here.
func (s *TodoService) logOperation(ctx context.Context, opName, username string, todoID any) {
	e := audit.Event{
		ZipkinSpan: tracing.SpanID(ctx),
		OpName:     opName,
		Username:   username,
		TodoID:     todoID,
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		metrics.AuditPublishFailures.Inc()
		log.Printf("audit publish %s for %q: %v", opName, username, err)
		return
	}
	metrics.AuditPublished.Inc()
}

// lockUser takes the per-username mutex guarding the read-modify-write in
// Create and Delete, so concurrent mutations for one user cannot lose
// updates. Locks are never removed; the map grows with the set of users,
// same as the store itself.
func (s *TodoService) lockUser(username string) func() {
	s.mu.Lock()
	l, ok := s.locks[username]
	if !ok {
		l = &sync.Mutex{}
		s.locks[username] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

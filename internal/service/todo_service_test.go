package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Sebastian-411/microservice-app-example/internal/audit"
	dom "github.com/Sebastian-411/microservice-app-example/internal/domain"
	"github.com/Sebastian-411/microservice-app-example/internal/service"
	"github.com/Sebastian-411/microservice-app-example/internal/store"
	"github.com/Sebastian-411/microservice-app-example/internal/tracing"

	"github.com/openzipkin/zipkin-go/reporter/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

func (p *capturePublisher) Publish(_ context.Context, e audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) all() []audit.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]audit.Event, len(p.events))
	copy(out, p.events)
	return out
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, audit.Event) error {
	return errors.New("channel down")
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (dom.TodoList, bool, error) {
	return dom.TodoList{}, false, errors.New("store unavailable")
}

func (brokenStore) Put(context.Context, string, dom.TodoList) error {
	return errors.New("store unavailable")
}

func newService(t *testing.T) (*service.TodoService, *capturePublisher, *store.MemoryStore, *recorder.ReporterRecorder) {
	t.Helper()
	rec := recorder.NewReporter()
	t.Cleanup(func() { _ = rec.Close() })
	tr, err := tracing.NewWithReporter("todos-api", rec)
	require.NoError(t, err)
	pub := &capturePublisher{}
	st := store.NewMemoryStore()
	return service.NewTodoService(st, pub, tr), pub, st, rec
}

func TestListSeedsDefaults(t *testing.T) {
	svc, _, st, _ := newService(t)
	ctx := context.Background()

	items, err := svc.List(ctx, "johnd")
	require.NoError(t, err)
	assert.ElementsMatch(t, []dom.TodoItem{
		{ID: 1, Content: "Create new todo"},
		{ID: 2, Content: "Update me"},
		{ID: 3, Content: "Delete example ones"},
	}, items)

	list, ok, err := st.Get(ctx, "johnd")
	require.NoError(t, err)
	require.True(t, ok, "seed must be written back to the store")
	assert.Equal(t, 3, list.LastInsertedID)
}

func TestSeedIsPerUser(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "johnd", "mine")
	require.NoError(t, err)

	items, err := svc.List(ctx, "janed")
	require.NoError(t, err)
	assert.Len(t, items, 3, "another user's create must not leak into the seed")
}

func TestCreateAssignsFreshID(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "johnd", "buy milk")
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID, "first create after the seed takes the next unused id")
	assert.Equal(t, "buy milk", created.Content)

	second, err := svc.Create(ctx, "johnd", "")
	require.NoError(t, err)
	assert.Equal(t, 5, second.ID)
	assert.Empty(t, second.Content, "empty content is accepted as-is")

	items, err := svc.List(ctx, "johnd")
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Contains(t, items, dom.TodoItem{ID: 3, Content: "Delete example ones"},
		"seeded item 3 must survive the first create")
	assert.Contains(t, items, dom.TodoItem{ID: 4, Content: "buy milk"})
}

func TestDeleteRemovesItemAndIsIdempotent(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "johnd", "2"))
	items, err := svc.List(ctx, "johnd")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.NotContains(t, items, dom.TodoItem{ID: 2, Content: "Update me"})

	// Second delete of the same id: no error, no change.
	require.NoError(t, svc.Delete(ctx, "johnd", "2"))
	items, err = svc.List(ctx, "johnd")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestDeleteUnknownIDIsNoOp(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "johnd", "99"))
	items, err := svc.List(ctx, "johnd")
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestSeedCreateDeleteList(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "johnd", "buy milk")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "johnd", "2"))

	items, err := svc.List(ctx, "johnd")
	require.NoError(t, err)
	assert.ElementsMatch(t, []dom.TodoItem{
		{ID: 1, Content: "Create new todo"},
		{ID: 3, Content: "Delete example ones"},
		{ID: created.ID, Content: "buy milk"},
	}, items)
}

func TestMutationsPublishAuditEvents(t *testing.T) {
	svc, pub, _, rec := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "johnd", "buy milk")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "johnd", "2"))

	events := pub.all()
	require.Len(t, events, 2)

	assert.Equal(t, audit.OperationCreate, events[0].OpName)
	assert.Equal(t, "johnd", events[0].Username)
	assert.Equal(t, created.ID, events[0].TodoID)
	assert.NotEmpty(t, events[0].ZipkinSpan)

	assert.Equal(t, audit.OperationDelete, events[1].OpName)
	assert.Equal(t, "johnd", events[1].Username)
	assert.Equal(t, "2", events[1].TodoID, "delete publishes the raw path id")
	assert.NotEmpty(t, events[1].ZipkinSpan)

	// The span id in each event is the one active during that operation.
	spans := rec.Flush()
	spanIDs := make(map[string]string, len(spans))
	for _, s := range spans {
		spanIDs[s.Name] = s.SpanContext.ID.String()
	}
	assert.Equal(t, spanIDs["create"], events[0].ZipkinSpan)
	assert.Equal(t, spanIDs["delete"], events[1].ZipkinSpan)
}

func TestListPublishesNothing(t *testing.T) {
	svc, pub, _, _ := newService(t)

	_, err := svc.List(context.Background(), "johnd")
	require.NoError(t, err)
	assert.Empty(t, pub.all())
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	rec := recorder.NewReporter()
	t.Cleanup(func() { _ = rec.Close() })
	tr, err := tracing.NewWithReporter("todos-api", rec)
	require.NoError(t, err)
	svc := service.NewTodoService(store.NewMemoryStore(), failingPublisher{}, tr)
	ctx := context.Background()

	created, err := svc.Create(ctx, "johnd", "buy milk")
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID)
	require.NoError(t, svc.Delete(ctx, "johnd", "1"))
}

func TestStoreErrorsPropagate(t *testing.T) {
	rec := recorder.NewReporter()
	t.Cleanup(func() { _ = rec.Close() })
	tr, err := tracing.NewWithReporter("todos-api", rec)
	require.NoError(t, err)
	pub := &capturePublisher{}
	svc := service.NewTodoService(brokenStore{}, pub, tr)
	ctx := context.Background()

	_, err = svc.List(ctx, "johnd")
	assert.Error(t, err)
	_, err = svc.Create(ctx, "johnd", "x")
	assert.Error(t, err)
	assert.Error(t, svc.Delete(ctx, "johnd", "1"))
	assert.Empty(t, pub.all(), "no audit event before a successful write")
}

func TestConcurrentCreatesGetDistinctIDs(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()

	const n = 20
	ids := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, err := svc.Create(ctx, "johnd", "concurrent")
			assert.NoError(t, err)
			ids <- item.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	items, err := svc.List(ctx, "johnd")
	require.NoError(t, err)
	assert.Len(t, items, 3+n, "no lost updates under concurrent creates")
}

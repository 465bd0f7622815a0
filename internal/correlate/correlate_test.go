package correlate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type stubPublisher struct {
	mu       sync.Mutex
	err      error
	messages []publishedMessage
}

type publishedMessage struct {
	topic   string
	key     string
	payload []byte
}

func (p *stubPublisher) Publish(topic, key string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, publishedMessage{topic: topic, key: key, payload: payload})
	return nil
}

func (p *stubPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

func awaitValue[T any](t *testing.T, call *Call[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return call.Await(ctx)
}

func TestRegistry_ResolveByKey(t *testing.T) {
	pub := &stubPublisher{}
	reg := NewRegistry[string](pub, "requests", nil)

	call := reg.Send("buyer-1", map[string]string{"buyer_id": "buyer-1"})
	if pub.count() != 1 {
		t.Fatalf("expected one published request, got %d", pub.count())
	}

	if ok := reg.Resolve("buyer-1", "hello"); !ok {
		t.Fatal("expected resolve to find the waiter")
	}

	val, err := awaitValue(t, call)
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if val != "hello" {
		t.Fatalf("expected resolved value, got %q", val)
	}
	if reg.Len() != 0 {
		t.Fatalf("expected empty registry, got %d pending", reg.Len())
	}
}

func TestRegistry_ConcurrentDistinctKeys(t *testing.T) {
	pub := &stubPublisher{}
	reg := NewRegistry[int](pub, "requests", nil)

	const n = 50
	calls := make([]*Call[int], n)
	for i := 0; i < n; i++ {
		calls[i] = reg.Send(fmt.Sprintf("key-%d", i), struct{}{})
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg.Resolve(fmt.Sprintf("key-%d", i), i)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		val, err := awaitValue(t, calls[i])
		if err != nil {
			t.Fatalf("await call %d: %v", i, err)
		}
		if val != i {
			t.Fatalf("call %d got value %d", i, val)
		}
	}
}

func TestRegistry_RejectDeliversError(t *testing.T) {
	pub := &stubPublisher{}
	reg := NewRegistry[string](pub, "requests", nil)

	call := reg.Send("buyer-404", struct{}{})
	wantErr := errors.New("buyer not found")
	if ok := reg.Reject("buyer-404", wantErr); !ok {
		t.Fatal("expected reject to find the waiter")
	}

	_, err := awaitValue(t, call)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected original error, got %v", err)
	}
}

func TestRegistry_ReplyWithoutWaiterDropped(t *testing.T) {
	pub := &stubPublisher{}
	reg := NewRegistry[string](pub, "requests", nil)

	if ok := reg.Resolve("unknown", "value"); ok {
		t.Fatal("expected reply without waiter to be dropped")
	}
	if ok := reg.Reject("unknown", errors.New("boom")); ok {
		t.Fatal("expected error reply without waiter to be dropped")
	}
}

func TestRegistry_DuplicateKeyLastWriterWins(t *testing.T) {
	pub := &stubPublisher{}
	reg := NewRegistry[string](pub, "requests", nil)

	first := reg.Send("buyer-1", struct{}{})
	second := reg.Send("buyer-1", struct{}{})

	reg.Resolve("buyer-1", "reply")

	val, err := awaitValue(t, second)
	if err != nil {
		t.Fatalf("await second: %v", err)
	}
	if val != "reply" {
		t.Fatalf("expected second sender to win, got %q", val)
	}

	// Перезаписанный слот не разрешится никогда.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := first.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected first waiter to stay unresolved, got %v", err)
	}
}

func TestRegistry_PublishFailureRejectsImmediately(t *testing.T) {
	pub := &stubPublisher{err: errors.New("broker down")}
	reg := NewRegistry[string](pub, "requests", nil)

	call := reg.Send("buyer-1", struct{}{})
	_, err := awaitValue(t, call)
	if err == nil {
		t.Fatal("expected publish error")
	}
	if reg.Len() != 0 {
		t.Fatalf("expected slot removed after publish failure, got %d pending", reg.Len())
	}
}

func TestRegistry_AwaitHonorsContextCancel(t *testing.T) {
	pub := &stubPublisher{}
	reg := NewRegistry[string](pub, "requests", nil)

	call := reg.Send("buyer-1", struct{}{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := call.Await(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// Отмена ожидания не снимает слот: поздний ответ всё ещё сопоставим.
	if reg.Len() != 1 {
		t.Fatalf("expected slot to stay registered, got %d pending", reg.Len())
	}
}

func TestQueue_ResolvesInSendOrder(t *testing.T) {
	pub := &stubPublisher{}
	q := NewQueue[int](pub, "requests", nil)

	first := q.Send(struct{}{})
	second := q.Send(struct{}{})
	third := q.Send(struct{}{})

	q.Resolve(1)
	q.Resolve(2)
	q.Resolve(3)

	for i, call := range []*Call[int]{first, second, third} {
		val, err := awaitValue(t, call)
		if err != nil {
			t.Fatalf("await call %d: %v", i, err)
		}
		if val != i+1 {
			t.Fatalf("call %d got %d, FIFO order broken", i, val)
		}
	}
}

func TestQueue_RejectCompletesHead(t *testing.T) {
	pub := &stubPublisher{}
	q := NewQueue[int](pub, "requests", nil)

	first := q.Send(struct{}{})
	second := q.Send(struct{}{})

	wantErr := errors.New("malformed reply")
	q.Reject(wantErr)
	q.Resolve(42)

	if _, err := awaitValue(t, first); !errors.Is(err, wantErr) {
		t.Fatalf("expected head rejected, got %v", err)
	}
	val, err := awaitValue(t, second)
	if err != nil {
		t.Fatalf("await second: %v", err)
	}
	if val != 42 {
		t.Fatalf("expected 42, got %d", val)
	}
}

func TestQueue_ReplyWithoutWaiterDropped(t *testing.T) {
	pub := &stubPublisher{}
	q := NewQueue[int](pub, "requests", nil)

	if ok := q.Resolve(1); ok {
		t.Fatal("expected reply on empty queue to be dropped")
	}
}

func TestQueue_PublishFailureRemovesSlot(t *testing.T) {
	pub := &stubPublisher{err: errors.New("broker down")}
	q := NewQueue[int](pub, "requests", nil)

	call := q.Send(struct{}{})
	if _, err := awaitValue(t, call); err == nil {
		t.Fatal("expected publish error")
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue after publish failure, got %d", q.Len())
	}
}

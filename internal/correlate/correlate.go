// Package correlate превращает одностороннюю пару каналов
// "опубликовать запрос / получить ответ" в ожидаемый точечный вызов.
// Каждый клиент владеет собственным реестром ожиданий; глобального
// состояния пакет не держит.
package correlate

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Publisher публикует сериализованный запрос в именованный канал.
type Publisher interface {
	Publish(topic, key string, payload []byte) error
}

// Call — однократно заполняемый слот результата одного запроса.
// Встроенного таймаута нет: вызов без ответа ждёт до завершения процесса.
type Call[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newCall[T any]() *Call[T] {
	return &Call[T]{done: make(chan struct{})}
}

// Await блокирует вызывающего до прихода результата. Отмена контекста
// возвращает управление, но слот остаётся в реестре до прихода ответа:
// отмена дальше транспорта не распространяется.
func (c *Call[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (c *Call[T]) complete(val T, err error) {
	c.once.Do(func() {
		c.val = val
		c.err = err
		close(c.done)
	})
}

// Registry — вариант реестра с бизнес-ключом: ответ сопоставляется
// запросу по ключу, который сервис-ответчик эхом возвращает в payload.
//
// Повторная регистрация по уже ожидающему ключу перезаписывает прежний
// слот (last writer wins): перезаписанный Await не разрешится никогда.
// Это наблюдаемое поведение протокола, опасное при конкурентных
// дубликатах одного ключа; см. DESIGN.md.
type Registry[T any] struct {
	publisher Publisher
	topic     string
	logger    *log.Entry

	mu      sync.Mutex
	pending map[string]*Call[T]
}

// NewRegistry создаёт реестр ожиданий, привязанный к каналу запросов.
func NewRegistry[T any](publisher Publisher, topic string, logger *log.Entry) *Registry[T] {
	if logger == nil {
		logger = log.New().WithField("component", "correlate")
	}
	return &Registry[T]{
		publisher: publisher,
		topic:     topic,
		logger:    logger.WithField("request_topic", topic),
		pending:   make(map[string]*Call[T]),
	}
}

// Send регистрирует слот под ключом, публикует запрос и сразу возвращает
// ожидаемый вызов. Синхронная ошибка публикации немедленно отклоняет слот
// и убирает его из реестра.
func (r *Registry[T]) Send(key string, request any) *Call[T] {
	call := newCall[T]()

	payload, err := json.Marshal(request)
	if err != nil {
		var zero T
		call.complete(zero, fmt.Errorf("marshal request: %w", err))
		return call
	}

	r.mu.Lock()
	r.pending[key] = call
	r.mu.Unlock()

	if err := r.publisher.Publish(r.topic, key, payload); err != nil {
		r.logger.WithError(err).WithField("key", key).Error("failed to publish request")
		r.remove(key, call)
		var zero T
		call.complete(zero, fmt.Errorf("publish request: %w", err))
	}

	return call
}

// Resolve завершает слот по ключу успешным значением.
// Ответ без ожидающего слота отбрасывается, не задевая остальных.
func (r *Registry[T]) Resolve(key string, val T) bool {
	call, ok := r.take(key)
	if !ok {
		r.logger.WithField("key", key).Debug("reply without waiter dropped")
		return false
	}
	call.complete(val, nil)
	return true
}

// Reject завершает слот по ключу ошибкой.
func (r *Registry[T]) Reject(key string, err error) bool {
	call, ok := r.take(key)
	if !ok {
		r.logger.WithField("key", key).Debug("error reply without waiter dropped")
		return false
	}
	var zero T
	call.complete(zero, err)
	return true
}

// Len возвращает число ожидающих слотов.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *Registry[T]) take(key string) (*Call[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	call, ok := r.pending[key]
	if ok {
		delete(r.pending, key)
	}
	return call, ok
}

// remove убирает слот, только если под ключом всё ещё зарегистрирован
// именно он: к этому моменту ключ мог быть перезаписан новым отправителем.
func (r *Registry[T]) remove(key string, call *Call[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.pending[key]; ok && current == call {
		delete(r.pending, key)
	}
}

// Queue — вариант реестра без бизнес-ключа: слоты образуют FIFO,
// ответы сопоставляются порядку отправки. Корректность требует
// доставки ответов ровно один раз и строго в порядке запросов;
// потерянный или переставленный ответ навсегда смещает сопоставление
// всех последующих. Используется там, где payload не несёт
// естественного ключа корреляции.
type Queue[T any] struct {
	publisher Publisher
	topic     string
	logger    *log.Entry

	mu      sync.Mutex
	pending []*Call[T]
}

// NewQueue создаёт FIFO-реестр, привязанный к каналу запросов.
func NewQueue[T any](publisher Publisher, topic string, logger *log.Entry) *Queue[T] {
	if logger == nil {
		logger = log.New().WithField("component", "correlate")
	}
	return &Queue[T]{
		publisher: publisher,
		topic:     topic,
		logger:    logger.WithField("request_topic", topic),
	}
}

// Send добавляет слот в хвост очереди, публикует запрос и возвращает
// ожидаемый вызов. Синхронная ошибка публикации немедленно отклоняет слот
// и убирает его из очереди.
func (q *Queue[T]) Send(request any) *Call[T] {
	call := newCall[T]()

	payload, err := json.Marshal(request)
	if err != nil {
		var zero T
		call.complete(zero, fmt.Errorf("marshal request: %w", err))
		return call
	}

	q.mu.Lock()
	q.pending = append(q.pending, call)
	q.mu.Unlock()

	if err := q.publisher.Publish(q.topic, "", payload); err != nil {
		q.logger.WithError(err).Error("failed to publish request")
		q.remove(call)
		var zero T
		call.complete(zero, fmt.Errorf("publish request: %w", err))
	}

	return call
}

// Resolve завершает головной слот очереди успешным значением.
// Ответ при пустой очереди отбрасывается.
func (q *Queue[T]) Resolve(val T) bool {
	call, ok := q.poll()
	if !ok {
		q.logger.Debug("reply without waiter dropped")
		return false
	}
	call.complete(val, nil)
	return true
}

// Reject завершает головной слот очереди ошибкой.
func (q *Queue[T]) Reject(err error) bool {
	call, ok := q.poll()
	if !ok {
		q.logger.Debug("error reply without waiter dropped")
		return false
	}
	var zero T
	call.complete(zero, err)
	return true
}

// Len возвращает число ожидающих слотов.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue[T]) poll() (*Call[T], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil, false
	}
	call := q.pending[0]
	q.pending = q.pending[1:]
	return call, true
}

func (q *Queue[T]) remove(call *Call[T]) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, c := range q.pending {
		if c == call {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

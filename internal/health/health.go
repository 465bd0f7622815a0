package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status — состояние компонента или сервиса в целом.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Check — результат одной проверки.
type Check struct {
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Response — агрегированный ответ health-эндпоинта.
type Response struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// Handler агрегирует проверки зависимостей (БД, брокер) и отдает
// общий статус сервиса.
type Handler struct {
	mu        sync.RWMutex
	checks    map[string]func() error
	version   string
	startTime time.Time
}

// NewHandler создает health-обработчик с указанной версией сборки.
func NewHandler(version string) *Handler {
	return &Handler{
		checks:    make(map[string]func() error),
		version:   version,
		startTime: time.Now(),
	}
}

// RegisterCheck добавляет именованную проверку зависимости.
func (h *Handler) RegisterCheck(name string, fn func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = fn
}

func (h *Handler) runChecks() (map[string]Check, Status) {
	h.mu.RLock()
	checks := make(map[string]func() error, len(h.checks))
	for name, fn := range h.checks {
		checks[name] = fn
	}
	h.mu.RUnlock()

	results := make(map[string]Check, len(checks))
	overall := StatusHealthy
	for name, fn := range checks {
		start := time.Now()
		err := fn()
		result := Check{Status: StatusHealthy, DurationMs: time.Since(start).Milliseconds()}
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			overall = StatusUnhealthy
		}
		results[name] = result
	}
	return results, overall
}

// ServeHTTP отдает развернутый статус всех зависимостей.
func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	checks, overall := h.runChecks()

	statusCode := http.StatusOK
	if overall == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Response{
		Status:        overall,
		Timestamp:     time.Now(),
		Checks:        checks,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

// LivenessHandler отвечает 200, пока процесс жив.
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ReadinessHandler отвечает 200, когда все зависимости доступны.
func (h *Handler) ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	if _, overall := h.runChecks(); overall == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

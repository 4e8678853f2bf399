// Package view содержит оркестраторы представлений: загрузку данных для экрана,
// действия пользователя и согласование локального состояния после них.
package view

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-nexus/internal/logger"
	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
)

// Status состояние загрузки представления.
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot состояние загрузчика на момент чтения.
type Snapshot[T any] struct {
	Status Status `json:"status"`
	Data   T      `json:"data"`
	Error  string `json:"error,omitempty"`
}

// Loader хранит данные одного представления.
// Каждый Load получает новое поколение; результат устаревшего поколения отбрасывается.
// После Close результаты не применяются вовсе, но запросы не отменяются.
type Loader[T any] struct {
	name string

	mu        sync.Mutex
	status    Status
	data      T
	errMsg    string
	gen       uint64
	closed    bool
	listeners []func()
}

// NewLoader создаёт загрузчик в состоянии Idle.
func NewLoader[T any](name string) *Loader[T] {
	return &Loader[T]{name: name}
}

// Load переводит загрузчик в Loading и выполняет fetch.
// Ошибка чтения сохраняет прежние данные и выставляет сообщение; повторов нет.
// Если результат отброшен (устарел или представление закрыто), возвращает nil.
func (l *Loader[T]) Load(ctx context.Context, fetch func(ctx context.Context) (T, error)) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.gen++
	gen := l.gen
	l.status = Loading
	l.errMsg = ""
	l.mu.Unlock()
	l.notify()

	data, err := fetch(ctx)

	l.mu.Lock()
	if l.closed || gen != l.gen {
		l.mu.Unlock()
		logger.WithComponent("view").WithFields(logrus.Fields{
			"view":       l.name,
			"generation": gen,
		}).Debug("устаревший ответ отброшен")
		return nil
	}
	if err != nil {
		l.status = Failed
		l.errMsg = apperror.UserMessage(err)
	} else {
		l.status = Ready
		l.data = data
	}
	l.mu.Unlock()

	if err != nil {
		logger.WithComponent("view").WithError(err).WithField("view", l.name).Warn("не удалось загрузить данные")
	}
	l.notify()
	return err
}

// Patch применяет локальное согласование к текущим данным.
func (l *Loader[T]) Patch(fn func(T) T) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.data = fn(l.data)
	l.mu.Unlock()
	l.notify()
}

// Snapshot возвращает текущее состояние.
func (l *Loader[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot[T]{Status: l.status, Data: l.data, Error: l.errMsg}
}

// Data текущие данные.
func (l *Loader[T]) Data() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data
}

// OnChange регистрирует слушателя изменений состояния.
func (l *Loader[T]) OnChange(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Close размонтирует представление: поздние результаты игнорируются.
func (l *Loader[T]) Close() {
	l.mu.Lock()
	l.closed = true
	l.listeners = nil
	l.mu.Unlock()
}

func (l *Loader[T]) Name() string {
	return l.name
}

func (l *Loader[T]) notify() {
	l.mu.Lock()
	fns := append([]func(){}, l.listeners...)
	l.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

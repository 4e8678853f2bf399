package view

import (
	"sync"

	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
)

// FormState состояние отправки формы. Ошибка показывается рядом с формой.
type FormState struct {
	Submitting bool   `json:"submitting"`
	Error      string `json:"error,omitempty"`
}

type form struct {
	mu         sync.Mutex
	submitting bool
	errMsg     string
	listeners  []func()
}

// begin помечает отправку; повторная отправка во время текущей отклоняется.
func (f *form) begin() bool {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return false
	}
	f.submitting = true
	f.errMsg = ""
	f.mu.Unlock()
	f.notify()
	return true
}

func (f *form) finish(err error) error {
	f.mu.Lock()
	f.submitting = false
	if err != nil {
		f.errMsg = apperror.UserMessage(err)
	}
	f.mu.Unlock()
	f.notify()
	return err
}

func (f *form) state() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FormState{Submitting: f.submitting, Error: f.errMsg}
}

func (f *form) onChange(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

func (f *form) close() {
	f.mu.Lock()
	f.listeners = nil
	f.mu.Unlock()
}

func (f *form) notify() {
	f.mu.Lock()
	fns := append([]func(){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// errSubmitting повторная отправка формы.
var errSubmitting = apperror.New(apperror.ErrCodeValidation, "форма уже отправляется")

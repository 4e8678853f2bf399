// Package goroutine фоновые задачи с перехватом panic.
package goroutine

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/ignatzorin/freelance-nexus/internal/logger"
)

// Logger куда пишется перехваченная panic.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// Runner запускает задачи; panic в задаче пишется в лог и не роняет процесс.
type Runner struct {
	log Logger
}

func NewRunner(log Logger) *Runner {
	return &Runner{log: log}
}

// Go запускает fn в отдельной горутине. name попадает в лог при panic.
func (r *Runner) Go(name string, fn func()) {
	go func() {
		defer r.recover(name)
		fn()
	}()
}

// GoContext то же, что Go, для задач, живущих до отмены ctx.
func (r *Runner) GoContext(ctx context.Context, name string, fn func(context.Context)) {
	r.Go(name, func() { fn(ctx) })
}

func (r *Runner) recover(name string) {
	if p := recover(); p != nil {
		r.log.Errorf("panic в задаче %s: %v\n%s", name, p, debug.Stack())
	}
}

var std = NewRunner(logger.WithComponent("goroutine"))

func Go(name string, fn func()) { std.Go(name, fn) }

func GoContext(ctx context.Context, name string, fn func(context.Context)) {
	std.GoContext(ctx, name, fn)
}

// Protect превращает panic задачи errgroup в ошибку.
func Protect(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				logger.WithComponent("goroutine").Errorf("panic в задаче: %v\n%s", p, debug.Stack())
				err = fmt.Errorf("goroutine: panic: %v", p)
			}
		}()
		return fn()
	}
}

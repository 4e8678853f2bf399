package goroutine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, fmt.Sprintf(format, args...))
}

func TestRunner_RecoversPanic(t *testing.T) {
	log := &recordingLogger{}
	r := NewRunner(log)

	done := make(chan struct{})
	r.Go("pump", func() {
		defer close(done)
		panic("boom")
	})
	<-done

	// recover выполняется после close(done), ждём запись в лог
	require.Eventually(t, func() bool {
		log.mu.Lock()
		defer log.mu.Unlock()
		return len(log.msgs) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, log.msgs[0], "boom")
	assert.Contains(t, log.msgs[0], "pump")
}

func TestRunner_GoContextPassesContext(t *testing.T) {
	r := NewRunner(&recordingLogger{})
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	r.GoContext(ctx, "loop", func(ctx context.Context) {
		<-ctx.Done()
		close(stopped)
	})
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("задача не остановилась после отмены контекста")
	}
}

func TestProtect_ConvertsPanicToError(t *testing.T) {
	err := Protect(func() error { panic("kaput") })()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaput")

	assert.NoError(t, Protect(func() error { return nil })())
}

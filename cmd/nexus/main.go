package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ignatzorin/freelance-nexus/internal/cli"
	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "nexus:", cli.Describe(err))
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode 2 для входа и прав, 1 для остальных ошибок.
func exitCode(err error) int {
	if apperror.IsAuth(err) || apperror.IsForbidden(err) {
		return 2
	}
	return 1
}

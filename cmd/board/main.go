package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/scoreview/internal/boardcli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := boardcli.Execute(ctx); err != nil {
		os.Stderr.WriteString("board: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

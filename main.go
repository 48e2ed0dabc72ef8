// main is the entry point of the ecoscore CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/ecoscore/cmd"
	"github.com/huangsam/ecoscore/internal/iocache"
)

func main() {
	os.Exit(run())
}

// run keeps deferred cleanup ahead of os.Exit.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseStores()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			fmt.Fprintln(os.Stderr, "❌", err)
		}
	}()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		return 1
	}
	return 0
}

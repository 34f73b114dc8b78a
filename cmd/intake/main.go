package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/WailSalutem-Health-Care/patient-intake/cmd/intake/cmd"
)

var (
	GitSHA string = "NA"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd.NewRoot(ctx, GitSHA).Execute(); err != nil {
		cancel()
		os.Exit(1)
	}
}

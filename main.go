// Package main is the entry point for the prtitle CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielolaszy/prtitle/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()

	if err != nil {
		os.Exit(cmd.LogExit(err))
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/forecast-dashboard/internal/config"
	"github.com/jrsteele09/forecast-dashboard/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := config.Load()
	logging.Setup(c.GetLogLevel(), c.GetEnv(), os.Stderr)

	code := run(ctx, c, os.Args[1:], os.Stdin, os.Stdout)
	stop()
	os.Exit(code)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

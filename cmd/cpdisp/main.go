package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/stlalpha/cpdisp/internal/ansi"
	"github.com/stlalpha/cpdisp/internal/backend"
	"github.com/stlalpha/cpdisp/internal/chart"
	"github.com/stlalpha/cpdisp/internal/config"
	"github.com/stlalpha/cpdisp/internal/logging"
	"github.com/stlalpha/cpdisp/internal/render"
)

func main() {
	os.Exit(run())
}

func run() int {
	c, err := config.ParseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logging.Setup(os.Stderr, c.Debug)

	switch {
	case c.Help:
		if err := config.WriteHelp(os.Stdout); err != nil {
			return 1
		}
		return 0
	case c.List:
		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			width = chart.DefaultListWidth
		}
		if err := chart.WriteNames(os.Stdout, backend.Names(), width); err != nil {
			return 1
		}
		return 0
	}

	if !c.NoFormat {
		if err := ansi.EnableVT(); err != nil {
			logging.Warn("enabling escape sequences: %v", err)
		}
	}
	if c.Interactive && !term.IsTerminal(int(os.Stdin.Fd())) {
		logging.Warn("standard input is not a terminal, pages advance on each input line")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in := render.NewLineReader(os.Stdin)
	if c.Watch {
		err = chart.Watch(ctx, c, os.Stdout, in)
	} else {
		err = chart.Run(ctx, c, os.Stdout, in)
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	}
	fmt.Fprintln(os.Stderr, err)
	return 1
}

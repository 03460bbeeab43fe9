// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/staranto/lessonctl/internal/api"
	"github.com/staranto/lessonctl/internal/command"
	mylog "github.com/staranto/lessonctl/internal/log"
	"github.com/staranto/lessonctl/internal/version"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = command.ExpandArgSets(args)
	}

	// Short-circuit --version/-v. Only as the first arg; subcommands own the
	// rest of the line.
	if args[1] == "--version" || args[1] == "-v" {
		fmt.Println(version.Version)
		return 0
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, api.Friendly(err))
		return 2
	}

	return 0
}

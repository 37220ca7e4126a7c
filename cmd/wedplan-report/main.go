package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"wedplan/internal/cli"
	"wedplan/internal/config"
	"wedplan/internal/core"
	applog "wedplan/internal/log"
)

func main() {
	email := flag.String("email", "", "email of the wedding owner")
	flag.Parse()
	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: wedplan-report -email owner@example.com")
		os.Exit(2)
	}

	cfg, logger := cli.LoadAndValidateConfig((*config.Config).Validate)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res := cli.OpenBackend(ctx, logger, cfg, false)
	err := run(ctx, os.Stdout, res.Store, res.Services(), *email)
	if cerr := res.Cleanup(); cerr != nil {
		logger.Warn("Backend cleanup error", applog.FieldError, cerr)
	}
	if err == nil {
		return
	}
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrNoWedding) {
		fmt.Fprintf(os.Stderr, "no wedding found for %s\n", *email)
	} else {
		logger.Error("Report failed", applog.FieldError, err)
	}
	os.Exit(1)
}

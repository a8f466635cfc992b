// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/adapter"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/adaptererr"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/alog"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/cache"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/cspconfig"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/eventloop"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/obs"
)

func main() {
	var flagConfigFile string
	flag.StringVar(&flagConfigFile, "config", "", "Load the adapter configuration from `path` (overrides CSP_ADAPTER_CONFIG_FILE)")
	flag.Parse()

	os.Exit(run(flagConfigFile))
}

func run(configFile string) int {
	path := configFile
	if path == "" {
		path = config.ResolvePath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		alog.Errorf("config: %s", err)
		return exitCode(err)
	}

	alog.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg, err := adapter.Build(ctx, cfg)
	if err != nil {
		alog.Errorf("backends: %s", err)
		return exitCode(err)
	}

	if err := initialSetup(ctx, reg, cfg); err != nil {
		alog.Errorf("initial setup: %s", err)
		return exitCode(err)
	}

	m := obs.New()

	if err := eventloop.Run(ctx, reg, cfg, m); err != nil {
		alog.Errorf("event loop: %s", err)
		return exitCode(err)
	}

	return 0
}

// initialSetup runs the reference implementation's
// initial_adapter_setup: prepare the backend, then create each
// persisted document if it does not already exist (spec §4.2).
func initialSetup(ctx context.Context, reg *adapter.Registry, cfg *config.Config) error {
	if err := reg.Storage.SetupAdapter(ctx, cfg); err != nil {
		return adaptererr.New(adaptererr.KindBackendUnavailable, err)
	}
	if _, err := cspconfig.Create(ctx, reg.Storage, cfg); err != nil {
		return err
	}
	if _, err := cache.Create(ctx, reg.Storage, cfg); err != nil {
		return err
	}
	return nil
}

// exitCode maps the error taxonomy (spec §7) to a process exit
// status: fatal kinds get 2, anything else not already handled
// internally by the pipeline gets 1.
func exitCode(err error) int {
	var derr *adaptererr.DomainError
	if errors.As(err, &derr) && derr.Kind.Fatal() {
		return 2
	}
	return 1
}

// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package eventloop schedules pipeline.Tick at the configured query
// interval and drives the adapter's run loop until it is asked to
// stop, grounded on the teacher's taskManager scheduler (a gocron
// Scheduler registered with NewJob/DurationJob) and its cmd/cc-backend
// main loop's signal-driven shutdown.
package eventloop

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/adapter"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/adaptererr"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/alog"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/billtime"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/obs"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/pipeline"
	"github.com/go-co-op/gocron/v2"
)

// Run blocks until ctx is cancelled or a SIGINT/SIGTERM is received,
// ticking the pipeline once per cfg.QueryInterval. A fatal tick
// error (spec §7: configuration or backend-unavailable) stops the
// loop and is returned; every other tick error is logged and the
// loop continues on schedule.
func Run(ctx context.Context, reg *adapter.Registry, cfg *config.Config, m *obs.Metrics) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return adaptererr.New(adaptererr.KindBackendUnavailable, err)
	}

	fatal := make(chan error, 1)

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.QueryInterval()),
		gocron.NewTask(func() {
			if err := pipeline.Tick(ctx, reg, cfg, m); err != nil {
				alog.Errorf("tick failed: %s", err)
				var derr *adaptererr.DomainError
				if errors.As(err, &derr) && derr.Kind.Fatal() {
					select {
					case fatal <- err:
					default:
					}
				}
			} else {
				alog.Infof("tick completed at %s", billtime.Format(billtime.Now()))
			}
		}),
	)
	if err != nil {
		return adaptererr.New(adaptererr.KindBackendUnavailable, err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	sched.Start()
	defer func() {
		if err := sched.Shutdown(); err != nil {
			alog.Warnf("scheduler shutdown: %s", err)
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case sig := <-sigs:
		alog.Infof("received %s, shutting down", sig)
		return nil
	case err := <-fatal:
		return err
	}
}

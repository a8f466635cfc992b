// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package local implements a demo sampling backend that reads
// metric values from an in-memory gauge set, standing in for the
// reference implementation's local_csp module used in its own
// tests. It satisfies internal/adapter.SamplingBackend; the registry
// binds to it by "kind": "local" (spec §6.1).
package local

import (
	"context"
	"sync"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/billtime"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/cache"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
)

// Backend returns the current value of each declared metric from an
// adjustable gauge set. Values default to 0 for metrics never set.
type Backend struct {
	mu     sync.Mutex
	gauges map[string]int64
}

// New returns a backend with no gauges set.
func New() *Backend {
	return &Backend{gauges: make(map[string]int64)}
}

// Set updates a metric's current gauge value, for demos and tests
// that drive the adapter through a sequence of samples.
func (b *Backend) Set(metric string, value int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gauges[metric] = value
}

func (b *Backend) GetUsageData(ctx context.Context, cfg *config.Config) (cache.UsageRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	metrics := make(map[string]int64, len(cfg.UsageMetrics))
	for metric := range cfg.UsageMetrics {
		metrics[metric] = b.gauges[metric]
	}

	return cache.UsageRecord{
		ReportingTime: billtime.Now(),
		Metrics:       metrics,
	}, nil
}

// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package adapter defines the capability set the core pipeline
// consumes from its three pluggable collaborators (spec §6.1) and an
// explicit, config-driven registry that binds them — replacing the
// reference implementation's pluggy-based dynamic entrypoint
// discovery (spec §9), the same way the teacher's metricdata package
// binds a MetricDataRepository by a declared "kind" string instead of
// runtime plugin discovery.
package adapter

import (
	"context"
	"time"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/cache"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/cspconfig"
)

// SamplingBackend produces one usage record per call.
type SamplingBackend interface {
	GetUsageData(ctx context.Context, cfg *config.Config) (cache.UsageRecord, error)
}

// StorageBackend durably persists the cache and CSP config documents.
// Both documents are exclusively owned by the adapter process; the
// backend provides durable storage but never mutates them itself.
type StorageBackend interface {
	SetupAdapter(ctx context.Context, cfg *config.Config) error
	cache.Store
	cspconfig.Store
}

// MeteringBackend submits a metering charge to the CSP marketplace
// API. idempotencyKey is the caller-assigned record identifier
// derived from the billing period's bounding timestamps (spec §9);
// a backend that recognizes a previously accepted key for the same
// period should treat resubmission as a success rather than a
// duplicate charge. dryRun is reserved for future use and defaults
// to false.
type MeteringBackend interface {
	MeterBilling(
		ctx context.Context,
		cfg *config.Config,
		dimensions map[string]int64,
		timestamp time.Time,
		idempotencyKey string,
		dryRun bool,
	) (recordID string, err error)
}

// Registry bundles the three bound backend implementations the
// pipeline and event loop operate against.
type Registry struct {
	Sampling SamplingBackend
	Storage  StorageBackend
	Metering MeteringBackend
}

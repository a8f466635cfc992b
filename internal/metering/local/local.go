// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package local implements a demo metering backend that accepts
// every submission except a configurable fraction, simulating the
// reference implementation's local_csp module, whose tests patch a
// randrange call to force success or failure deterministically. It
// satisfies internal/adapter.MeteringBackend; the registry binds to
// it by "kind": "local" (spec §6.1).
package local

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
)

// Backend simulates a CSP marketplace metering API. FailOneIn, when
// greater than 1, rejects roughly one submission in every N; 0 or 1
// means every submission succeeds.
type Backend struct {
	FailOneIn int
	rng       *rand.Rand

	dedup map[string]string
}

// New returns a backend that fails one submission in every failOneIn
// (0 or 1 disables simulated failure), seeded from seed for
// reproducible test runs.
func New(failOneIn int, seed int64) *Backend {
	return &Backend{
		FailOneIn: failOneIn,
		rng:       rand.New(rand.NewSource(seed)),
		dedup:     make(map[string]string),
	}
}

func (b *Backend) MeterBilling(
	ctx context.Context,
	cfg *config.Config,
	dimensions map[string]int64,
	timestamp time.Time,
	idempotencyKey string,
	dryRun bool,
) (string, error) {
	if recordID, seen := b.dedup[idempotencyKey]; seen {
		return recordID, nil
	}

	if b.FailOneIn > 1 && b.rng.Intn(b.FailOneIn) == 0 {
		return "", fmt.Errorf("local metering backend: simulated submission failure")
	}

	recordID := idempotencyKey
	if !dryRun {
		b.dedup[idempotencyKey] = recordID
	}
	return recordID, nil
}

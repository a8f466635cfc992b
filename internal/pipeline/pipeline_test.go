// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/adapter"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/cache"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/cspconfig"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/obs"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMetering lets tests force a metering submission to succeed or
// fail deterministically, mirroring the reference implementation's
// test_process_metering mocking of local_csp.randrange.
type fakeMetering struct {
	fail  bool
	calls int
}

func (f *fakeMetering) MeterBilling(
	ctx context.Context,
	cfg *config.Config,
	dimensions map[string]int64,
	timestamp time.Time,
	idempotencyKey string,
	dryRun bool,
) (string, error) {
	f.calls++
	if f.fail {
		return "", fmt.Errorf("simulated submission failure")
	}
	return "record-" + idempotencyKey, nil
}

func mixedConfig() *config.Config {
	return &config.Config{
		ReportingIntervalSeconds: 300,
		BillingIntervalSeconds:   1800,
		UsageMetrics: map[string]config.UsageMetric{
			"jobs":  {UsageAggregate: config.AggregateAverage, Dimensions: []config.Tier{{Dimension: "jobs_tier_1", Minimum: 0}}},
			"nodes": {UsageAggregate: config.AggregateAverage, Dimensions: []config.Tier{{Dimension: "nodes_tier_1", Minimum: 0}}},
		},
	}
}

func record(t time.Time, jobs, nodes int64) cache.UsageRecord {
	return cache.UsageRecord{ReportingTime: t, Metrics: map[string]int64{"jobs": jobs, "nodes": nodes}}
}

// TestProcessMeteringEndToEnd mirrors the reference implementation's
// test_process_metering: a heartbeat that leaves usage records and
// last_bill untouched, followed by a real bill that bills only the
// records within the current period and leaves the stragglers on
// either side of it alone, followed by a failed submission that is
// absorbed into the CSP config document without touching the cache.
func TestProcessMeteringEndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := mixedConfig()
	store := memory.New()

	doc, err := cache.Create(ctx, store, cfg)
	require.NoError(t, err)
	_, err = cspconfig.Create(ctx, store, cfg)
	require.NoError(t, err)

	billTime := doc.NextBillTime
	reportingInterval := cfg.ReportingInterval()
	billingInterval := cfg.BillingInterval()

	before := record(billTime.Add(-2*billingInterval), 44, 9)
	r1 := record(billTime.Add(-3*reportingInterval), 15, 4)
	r2 := record(billTime.Add(-2*reportingInterval), 23, 6)
	r3 := record(billTime.Add(-1*reportingInterval), 28, 7)
	after := record(billTime.Add(billingInterval), 63, 15)

	for _, r := range []cache.UsageRecord{before, r1, r2, r3, after} {
		require.NoError(t, cache.Append(ctx, store, cfg, r))
	}

	metering := &fakeMetering{}
	reg := &adapter.Registry{Storage: store, Metering: metering}
	m := obs.New()

	// Heartbeat: should not touch usage_records or last_bill.
	current, err := cache.Read(ctx, store, cfg)
	require.NoError(t, err)
	require.NoError(t, ProcessMetering(ctx, reg, cfg, current, billTime.Add(-time.Second), true, m))

	afterHeartbeat, err := cache.Read(ctx, store, cfg)
	require.NoError(t, err)
	assert.Len(t, afterHeartbeat.UsageRecords, 5)
	assert.True(t, afterHeartbeat.LastBill.IsEmpty())

	cspDoc, _, err := store.GetCSPConfig(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, cspDoc)

	// Real bill: only the three in-period records are billed; the
	// straggler before and after the period remain.
	current, err = cache.Read(ctx, store, cfg)
	require.NoError(t, err)
	require.NoError(t, ProcessMetering(ctx, reg, cfg, current, billTime, false, m))

	afterBill, err := cache.Read(ctx, store, cfg)
	require.NoError(t, err)
	require.Len(t, afterBill.UsageRecords, 2)
	assert.True(t, afterBill.UsageRecords[0].ReportingTime.Equal(before.ReportingTime))
	assert.True(t, afterBill.UsageRecords[1].ReportingTime.Equal(after.ReportingTime))
	assert.False(t, afterBill.LastBill.IsEmpty())
	assert.True(t, afterBill.NextBillTime.After(billTime))

	cspDoc, _, err = store.GetCSPConfig(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, cspDoc.BillingAPIAccessOK)
	assert.Empty(t, cspDoc.Errors)
	assert.NotNil(t, cspDoc.Usage)
	assert.NotNil(t, cspDoc.LastBilled)

	// A failed submission is recorded on the CSP config document but
	// never touches the cache.
	metering.fail = true
	current, err = cache.Read(ctx, store, cfg)
	require.NoError(t, err)
	require.NoError(t, ProcessMetering(ctx, reg, cfg, current, current.NextReportingTime, true, m))

	afterFailure, err := cache.Read(ctx, store, cfg)
	require.NoError(t, err)
	assert.Equal(t, afterBill.UsageRecords, afterFailure.UsageRecords)
	assert.Equal(t, afterBill.LastBill, afterFailure.LastBill)

	cspDoc, _, err = store.GetCSPConfig(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, cspDoc.BillingAPIAccessOK)
	assert.NotEmpty(t, cspDoc.Errors)
}

func TestProcessMeteringDimensionFailureRecordsCspErrorWithoutSubmitting(t *testing.T) {
	ctx := context.Background()
	cfg := mixedConfig()
	cfg.UsageMetrics["jobs"] = config.UsageMetric{
		UsageAggregate: config.AggregateAverage,
		Dimensions:     []config.Tier{{Dimension: "jobs_tier_1", Minimum: 0, Maximum: int64Ptr(10)}},
	}

	store := memory.New()
	doc, err := cache.Create(ctx, store, cfg)
	require.NoError(t, err)
	_, err = cspconfig.Create(ctx, store, cfg)
	require.NoError(t, err)

	require.NoError(t, cache.Append(ctx, store, cfg, record(doc.AdapterStartTime, 999, 1)))

	metering := &fakeMetering{}
	reg := &adapter.Registry{Storage: store, Metering: metering}
	m := obs.New()

	current, err := cache.Read(ctx, store, cfg)
	require.NoError(t, err)
	require.NoError(t, ProcessMetering(ctx, reg, cfg, current, current.NextBillTime, false, m))

	assert.Equal(t, 0, metering.calls)

	cspDoc, _, err := store.GetCSPConfig(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, cspDoc)
	assert.False(t, cspDoc.BillingAPIAccessOK)
	assert.NotEmpty(t, cspDoc.Errors)
}

func int64Ptr(v int64) *int64 { return &v }

// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pipeline implements one event loop tick end to end (spec
// §4.7): sampling, cache persistence, the heartbeat/real-bill
// decision, dimension mapping, metering submission, and CSP config
// reconciliation. It is grounded on original_source's
// event_loop_handler and process_metering functions, which this
// package splits into Tick and ProcessMetering for testability.
package pipeline

import (
	"context"
	"time"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/adapter"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/adaptererr"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/alog"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/billing"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/billtime"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/cache"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/cspconfig"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/obs"
)

// Tick runs one sample-and-maybe-bill cycle. A sampling failure
// aborts the tick immediately (spec §4.7 step 1) and is returned, as
// is a storage failure that stops the tick (the sample could not be
// appended, the cache could not be read, or the CSP config document
// could not be updated). Dimension-mapping and submission failures
// are absorbed here and surface only through the CSP config document.
func Tick(ctx context.Context, reg *adapter.Registry, cfg *config.Config, m *obs.Metrics) error {
	m.TicksTotal.Inc()

	record, err := reg.Sampling.GetUsageData(ctx, cfg)
	if err != nil {
		m.SampleFailures.Inc()
		return adaptererr.New(adaptererr.KindSample, err)
	}

	if err := cache.Append(ctx, reg.Storage, cfg, record); err != nil {
		m.PersistFailures.Inc()
		alog.Errorf("tick: sample could not be persisted: %s", err)
		return err
	}

	doc, err := cache.Read(ctx, reg.Storage, cfg)
	if err != nil {
		m.PersistFailures.Inc()
		return err
	}

	now := billtime.Now()

	switch {
	case !now.Before(doc.NextBillTime):
		return ProcessMetering(ctx, reg, cfg, doc, now, false, m)
	case !now.Before(doc.NextReportingTime):
		return ProcessMetering(ctx, reg, cfg, doc, now, true, m)
	default:
		return nil
	}
}

// ProcessMetering computes the billable usage for the current
// period, submits it (as a heartbeat when heartbeat is true, as a
// real charge otherwise), and reconciles both persisted documents
// with the outcome (spec §4.7 steps 2-5). doc is the cache snapshot
// Tick already read; now is the instant the decision was made.
//
// The CSP config document is always written before the cache, so an
// implementation without cross-document transactions never leaves a
// reader observing an advanced cache without the matching success
// record (spec §5). If the cache write then fails, ProcessMetering
// logs and returns nil: the next tick resubmits with the same
// idempotency key, which the metering backend is expected to
// recognize and treat as already billed.
func ProcessMetering(
	ctx context.Context,
	reg *adapter.Registry,
	cfg *config.Config,
	doc *cache.Document,
	now time.Time,
	heartbeat bool,
	m *obs.Metrics,
) error {
	prevBillTime := billtime.PrevBillTime(doc.NextBillTime, cfg.BillingInterval())
	sIn, sOut := splitByBillTime(doc.UsageRecords, prevBillTime, doc.NextBillTime)

	usage := billing.Calculate(sIn, cfg, heartbeat)

	dims, err := billing.MapDimensions(usage, cfg)
	if err != nil {
		m.DimensionFailures.Inc()
		alog.Warnf("tick: %s", err)
		return recordFailure(ctx, reg, cfg, err, m)
	}

	idempotencyKey := billing.RecordID(doc.AdapterStartTime, doc.NextBillTime)
	if heartbeat {
		// A heartbeat carries its own key, scoped to its reporting
		// deadline, so it is never taken for the period's real bill.
		idempotencyKey = "heartbeat-" + billing.RecordID(doc.AdapterStartTime, doc.NextReportingTime)
	}

	recordID, err := reg.Metering.MeterBilling(ctx, cfg, dims, now, idempotencyKey, false)
	if err != nil {
		m.SubmissionFailures.Inc()
		alog.Warnf("tick: metering submission failed: %s", err)
		return recordFailure(ctx, reg, cfg, err, m)
	}

	if heartbeat {
		m.HeartbeatsSent.Inc()
	} else {
		m.BillsSubmitted.Inc()
	}

	cspResult := cspconfig.Result{Success: true}
	if !heartbeat {
		lastBilled := now
		cspResult.Usage = usage
		cspResult.LastBilled = &lastBilled
	}
	if _, err := cspconfig.Update(ctx, reg.Storage, cfg, cspResult); err != nil {
		m.PersistFailures.Inc()
		alog.Errorf("tick: submission %s succeeded but csp config update failed: %s", recordID, err)
		return err
	}

	if heartbeat {
		doc.NextReportingTime = now.Add(cfg.ReportingInterval())
	} else {
		doc.LastBill = cache.LastBill{Dimensions: dims, MeteringTime: now, RecordID: recordID}
		doc.NextBillTime = advancePast(doc.NextBillTime, cfg.BillingInterval(), now)
		doc.NextReportingTime = now.Add(cfg.ReportingInterval())
		doc.UsageRecords = sOut
	}

	if err := reg.Storage.SaveCache(ctx, cfg, doc); err != nil {
		m.PersistFailures.Inc()
		alog.Errorf("tick: submission %s succeeded but cache update failed, will resubmit next tick: %s", recordID, err)
		return nil
	}

	return nil
}

// recordFailure writes a failed attempt to the CSP config document
// without contacting the metering backend again. A failure to even
// record the failure is returned to the caller; everything else is
// absorbed so the event loop keeps running.
func recordFailure(ctx context.Context, reg *adapter.Registry, cfg *config.Config, cause error, m *obs.Metrics) error {
	if _, err := cspconfig.Update(ctx, reg.Storage, cfg, cspconfig.Result{Success: false, Error: cause.Error()}); err != nil {
		m.PersistFailures.Inc()
		return err
	}
	return nil
}

// splitByBillTime partitions records into those sampled within the
// current billing period [prevBillTime, nextBillTime) and everything
// else. Records from before the period (a prior run's stragglers) or
// after it (the next period's early samples) are left untouched in
// the cache rather than billed or discarded, matching the reference
// implementation's handling of out-of-period samples.
func splitByBillTime(records []cache.UsageRecord, prevBillTime, nextBillTime time.Time) (inScope, outOfScope []cache.UsageRecord) {
	for _, r := range records {
		if !r.ReportingTime.Before(prevBillTime) && r.ReportingTime.Before(nextBillTime) {
			inScope = append(inScope, r)
		} else {
			outOfScope = append(outOfScope, r)
		}
	}
	return inScope, outOfScope
}

// advancePast advances deadline by interval until it is strictly
// after now, covering the case where the adapter missed one or more
// billing periods entirely (spec §4.7, multi-period catch-up).
func advancePast(deadline time.Time, interval time.Duration, now time.Time) time.Time {
	next := deadline.Add(interval)
	for !now.Before(next) {
		next = next.Add(interval)
	}
	return next
}

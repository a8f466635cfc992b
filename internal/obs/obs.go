// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package obs exposes Prometheus instrumentation for the event loop
// and pipeline, grounded on the teacher's metric-store counters
// (pkg/metricstore), adapted to a private registry the adapter owns
// rather than the teacher's exported HTTP metrics surface (spec's
// Non-goals exclude a metrics endpoint, but not the ambient
// instrumentation itself).
package obs

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every instrument the pipeline and event loop
// increment. A nil *Metrics is not valid; always construct one with
// New.
type Metrics struct {
	registry *prometheus.Registry

	TicksTotal        prometheus.Counter
	SampleFailures    prometheus.Counter
	PersistFailures   prometheus.Counter
	HeartbeatsSent    prometheus.Counter
	BillsSubmitted    prometheus.Counter
	SubmissionFailures prometheus.Counter
	DimensionFailures prometheus.Counter
}

// New builds a fresh instrument set registered against its own
// private registry, so tests and multiple adapter instances in one
// process never collide on the default global registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csp_billing_adapter_ticks_total",
			Help: "Event loop ticks processed.",
		}),
		SampleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csp_billing_adapter_sample_failures_total",
			Help: "Ticks that aborted because the sampling backend failed.",
		}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csp_billing_adapter_persistence_failures_total",
			Help: "Storage backend read/write failures.",
		}),
		HeartbeatsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csp_billing_adapter_heartbeats_total",
			Help: "Zero-dimension heartbeat submissions sent.",
		}),
		BillsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csp_billing_adapter_bills_submitted_total",
			Help: "Real billing submissions accepted by the metering backend.",
		}),
		SubmissionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csp_billing_adapter_submission_failures_total",
			Help: "Metering backend submissions that failed.",
		}),
		DimensionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csp_billing_adapter_dimension_mapping_failures_total",
			Help: "Billing periods that failed to map a metric to a configured tier.",
		}),
	}

	reg.MustRegister(
		m.TicksTotal,
		m.SampleFailures,
		m.PersistFailures,
		m.HeartbeatsSent,
		m.BillsSubmitted,
		m.SubmissionFailures,
		m.DimensionFailures,
	)

	return m
}

// Gatherer exposes the private registry as a prometheus.Gatherer, for
// a caller that wants to serve it (e.g. via promhttp.HandlerFor)
// without this package depending on net/http itself.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

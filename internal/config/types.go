// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads and validates the adapter's YAML configuration
// file: the query/reporting/billing intervals, the per-metric usage
// and dimension declarations, and the named backend bindings that
// feed internal/adapter's registry.
package config

import "time"

// Tier is one volume-pricing bucket for a metric. Tiers of one metric
// must cover [0, infinity) without gaps; Maximum == nil means
// unbounded above. Both bounds are inclusive.
type Tier struct {
	Dimension string `yaml:"dimension" json:"dimension"`
	Minimum   int64  `yaml:"minimum" json:"minimum"`
	Maximum   *int64 `yaml:"maximum,omitempty" json:"maximum,omitempty"`
}

// Contains reports whether qty falls within this tier's [Minimum, Maximum] range.
func (t Tier) Contains(qty int64) bool {
	if qty < t.Minimum {
		return false
	}
	return t.Maximum == nil || qty <= *t.Maximum
}

// UsageMetric describes how one metric's samples are aggregated into
// a billable quantity and mapped to pricing dimensions.
type UsageMetric struct {
	UsageAggregate       string `yaml:"usage_aggregate" json:"usage_aggregate"`
	ConsumptionReporting string `yaml:"consumption_reporting" json:"consumption_reporting"`
	Dimensions           []Tier `yaml:"dimensions" json:"dimensions"`
}

const (
	AggregateAverage = "average"
	AggregateMaximum = "maximum"
)

// BackendBinding names a plug-in implementation and carries its
// backend-specific parameters, passed through to the implementation's
// own config struct.
type BackendBinding struct {
	Kind   string                 `yaml:"kind" json:"kind"`
	Params map[string]interface{} `yaml:"params,omitempty" json:"params,omitempty"`
}

// Backends binds the three capability sets of spec §6.1 to concrete
// plug-in implementations, replacing the reference implementation's
// dynamic entrypoint discovery with an explicit, config-driven
// registry (see internal/adapter.Build).
type Backends struct {
	Sampling BackendBinding `yaml:"sampling" json:"sampling"`
	Storage  BackendBinding `yaml:"storage" json:"storage"`
	Metering BackendBinding `yaml:"metering" json:"metering"`
}

// Config is the full, validated adapter configuration for one run.
type Config struct {
	QueryIntervalSeconds     int                    `yaml:"query_interval" json:"query_interval"`
	ReportingIntervalSeconds int                    `yaml:"reporting_interval" json:"reporting_interval"`
	BillingIntervalSeconds   int                    `yaml:"billing_interval" json:"billing_interval"`
	UsageMetrics             map[string]UsageMetric `yaml:"usage_metrics" json:"usage_metrics"`
	Backends                 Backends               `yaml:"backends" json:"backends"`
	// MaxErrors bounds the csp_config errors list (spec §4.4, §9 Open
	// Question 1). Defaults to 16 when zero.
	MaxErrors int `yaml:"max_errors,omitempty" json:"max_errors,omitempty"`
	// LogLevel feeds internal/alog.SetLevel at startup.
	LogLevel string `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

func (c *Config) QueryInterval() time.Duration {
	return time.Duration(c.QueryIntervalSeconds) * time.Second
}

func (c *Config) ReportingInterval() time.Duration {
	return time.Duration(c.ReportingIntervalSeconds) * time.Second
}

func (c *Config) BillingInterval() time.Duration {
	return time.Duration(c.BillingIntervalSeconds) * time.Second
}

func (c *Config) MaxErrorsOrDefault() int {
	if c.MaxErrors <= 0 {
		return 16
	}
	return c.MaxErrors
}

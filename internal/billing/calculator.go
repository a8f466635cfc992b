// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package billing implements the billable-usage calculator (spec
// §4.5) and the tiered-dimension mapper (spec §4.6), grounded on
// original_source's bill_utils module, which co-locates both
// operations.
package billing

import (
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/cache"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
)

// Calculate reduces a set of usage records to one billable quantity
// per declared metric (spec §4.5). When emptyUsage is true, or
// records is empty, every declared metric maps to 0 regardless of
// its configured aggregate.
func Calculate(records []cache.UsageRecord, cfg *config.Config, emptyUsage bool) map[string]int64 {
	usage := make(map[string]int64, len(cfg.UsageMetrics))

	if emptyUsage || len(records) == 0 {
		for metric := range cfg.UsageMetrics {
			usage[metric] = 0
		}
		return usage
	}

	for metric, m := range cfg.UsageMetrics {
		values := collectValues(records, metric)
		switch m.UsageAggregate {
		case config.AggregateMaximum:
			usage[metric] = maxOf(values)
		default: // config.AggregateAverage
			usage[metric] = averageOf(values)
		}
	}

	return usage
}

func collectValues(records []cache.UsageRecord, metric string) []int64 {
	var values []int64
	for _, r := range records {
		if v, ok := r.Metrics[metric]; ok {
			values = append(values, v)
		}
	}
	return values
}

// averageOf returns the integer mean of values, truncated toward
// zero, or 0 for an empty slice.
func averageOf(values []int64) int64 {
	if len(values) == 0 {
		return 0
	}
	var sum int64
	for _, v := range values {
		sum += v
	}
	return sum / int64(len(values))
}

// maxOf returns the maximum of values, or 0 for an empty slice.
func maxOf(values []int64) int64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

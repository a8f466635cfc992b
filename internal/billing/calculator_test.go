// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package billing

import (
	"testing"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/cache"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
	"github.com/stretchr/testify/assert"
)

func metricConfig(aggregate string) *config.Config {
	return &config.Config{
		UsageMetrics: map[string]config.UsageMetric{
			"managed_node_count": {UsageAggregate: aggregate},
		},
	}
}

func records(values ...int64) []cache.UsageRecord {
	recs := make([]cache.UsageRecord, len(values))
	for i, v := range values {
		recs[i] = cache.UsageRecord{Metrics: map[string]int64{"managed_node_count": v}}
	}
	return recs
}

func TestCalculateEmptyUsage(t *testing.T) {
	usage := Calculate(nil, metricConfig(config.AggregateAverage), true)
	assert.Equal(t, int64(0), usage["managed_node_count"])
}

func TestCalculateAverageConstant(t *testing.T) {
	usage := Calculate(records(1, 1, 1), metricConfig(config.AggregateAverage), false)
	assert.Equal(t, int64(1), usage["managed_node_count"])
}

func TestCalculateAverageVariable(t *testing.T) {
	usage := Calculate(records(1, 2, 3), metricConfig(config.AggregateAverage), false)
	assert.Equal(t, int64(2), usage["managed_node_count"])
}

func TestCalculateMaximum(t *testing.T) {
	usage := Calculate(records(1, 2, 3), metricConfig(config.AggregateMaximum), false)
	assert.Equal(t, int64(3), usage["managed_node_count"])
}

func TestCalculateNoRecordsYieldsZero(t *testing.T) {
	usage := Calculate(nil, metricConfig(config.AggregateAverage), false)
	assert.Equal(t, int64(0), usage["managed_node_count"])
}

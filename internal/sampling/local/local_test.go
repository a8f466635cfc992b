// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package local

import (
	"context"
	"testing"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUsageDataReturnsZeroForUnsetGauges(t *testing.T) {
	b := New()
	cfg := &config.Config{UsageMetrics: map[string]config.UsageMetric{"jobs": {}, "nodes": {}}}

	rec, err := b.GetUsageData(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.Metrics["jobs"])
	assert.Equal(t, int64(0), rec.Metrics["nodes"])
}

func TestGetUsageDataReflectsSetGauges(t *testing.T) {
	b := New()
	b.Set("jobs", 42)
	cfg := &config.Config{UsageMetrics: map[string]config.UsageMetric{"jobs": {}}}

	rec, err := b.GetUsageData(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(42), rec.Metrics["jobs"])
	assert.False(t, rec.ReportingTime.IsZero())
}

func TestGetUsageDataOmitsMetricsNotDeclared(t *testing.T) {
	b := New()
	b.Set("jobs", 42)
	b.Set("extra", 7)
	cfg := &config.Config{UsageMetrics: map[string]config.UsageMetric{"jobs": {}}}

	rec, err := b.GetUsageData(context.Background(), cfg)
	require.NoError(t, err)
	_, ok := rec.Metrics["extra"]
	assert.False(t, ok)
}

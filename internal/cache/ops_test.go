// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/adaptererr"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	doc     *Document
	saveErr error
}

func (f *fakeStore) GetCache(ctx context.Context, cfg *config.Config) (*Document, bool, error) {
	if f.doc == nil {
		return nil, false, nil
	}
	doc := *f.doc
	return &doc, true, nil
}

func (f *fakeStore) SaveCache(ctx context.Context, cfg *config.Config, doc *Document) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	saved := *doc
	f.doc = &saved
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		BillingIntervalSeconds:   3600,
		ReportingIntervalSeconds: 300,
	}
}

func TestCreateInitializesDocument(t *testing.T) {
	store := &fakeStore{}
	cfg := testConfig()

	doc, err := Create(context.Background(), store, cfg)
	require.NoError(t, err)
	assert.Empty(t, doc.UsageRecords)
	assert.True(t, doc.LastBill.IsEmpty())
	assert.True(t, doc.NextBillTime.After(doc.AdapterStartTime))
}

func TestCreateIsIdempotent(t *testing.T) {
	store := &fakeStore{}
	cfg := testConfig()

	first, err := Create(context.Background(), store, cfg)
	require.NoError(t, err)

	second, err := Create(context.Background(), store, cfg)
	require.NoError(t, err)
	assert.Equal(t, first.AdapterStartTime, second.AdapterStartTime)
}

func TestAppendAddsRecordInOrder(t *testing.T) {
	store := &fakeStore{}
	cfg := testConfig()
	_, err := Create(context.Background(), store, cfg)
	require.NoError(t, err)

	require.NoError(t, Append(context.Background(), store, cfg, UsageRecord{Metrics: map[string]int64{"m": 1}}))
	require.NoError(t, Append(context.Background(), store, cfg, UsageRecord{Metrics: map[string]int64{"m": 2}}))

	doc, err := Read(context.Background(), store, cfg)
	require.NoError(t, err)
	require.Len(t, doc.UsageRecords, 2)
	assert.Equal(t, int64(1), doc.UsageRecords[0].Metrics["m"])
	assert.Equal(t, int64(2), doc.UsageRecords[1].Metrics["m"])
}

func TestAppendSurfacesPersistenceFailure(t *testing.T) {
	store := &fakeStore{}
	cfg := testConfig()
	_, err := Create(context.Background(), store, cfg)
	require.NoError(t, err)

	store.saveErr = errors.New("disk full")
	err = Append(context.Background(), store, cfg, UsageRecord{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	var cacheErr *adaptererr.CacheUpdateError
	assert.True(t, errors.As(err, &cacheErr))
}

func TestReadFailsWithoutCreate(t *testing.T) {
	store := &fakeStore{}
	_, err := Read(context.Background(), store, testConfig())
	assert.Error(t, err)
}

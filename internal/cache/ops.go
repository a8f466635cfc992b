// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"fmt"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/adaptererr"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/billtime"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
)

// Store is the narrow persistence capability the cache package needs
// from a storage backend (part of the larger set in internal/adapter,
// spec §6.1).
type Store interface {
	GetCache(ctx context.Context, cfg *config.Config) (*Document, bool, error)
	SaveCache(ctx context.Context, cfg *config.Config, doc *Document) error
}

// Create initializes the cache document if one does not already
// exist (spec §4.3 "create").
func Create(ctx context.Context, store Store, cfg *config.Config) (*Document, error) {
	existing, ok, err := store.GetCache(ctx, cfg)
	if err != nil {
		return nil, adaptererr.New(adaptererr.KindPersistence, err)
	}
	if ok {
		return existing, nil
	}

	now := billtime.Now()
	doc := &Document{
		AdapterStartTime:  now,
		NextBillTime:      now.Add(cfg.BillingInterval()),
		NextReportingTime: now.Add(cfg.ReportingInterval()),
		UsageRecords:      []UsageRecord{},
		LastBill:          LastBill{},
	}

	if err := store.SaveCache(ctx, cfg, doc); err != nil {
		return nil, adaptererr.New(adaptererr.KindPersistence, err)
	}

	return doc, nil
}

// Read returns the current cache snapshot.
func Read(ctx context.Context, store Store, cfg *config.Config) (*Document, error) {
	doc, ok, err := store.GetCache(ctx, cfg)
	if err != nil {
		return nil, adaptererr.New(adaptererr.KindPersistence, err)
	}
	if !ok {
		return nil, adaptererr.New(adaptererr.KindPersistence, fmt.Errorf("cache document does not exist"))
	}
	return doc, nil
}

// Append reads the current cache, appends record preserving insertion
// order, and writes the whole document back. Append is atomic at
// document granularity: the record either becomes visible on the next
// read, or Append returns an error and the caller must not treat the
// sample as committed (spec §4.3). A failed write is reported as a
// KindPersistence *adaptererr.DomainError wrapping an
// *adaptererr.CacheUpdateError.
func Append(ctx context.Context, store Store, cfg *config.Config, record UsageRecord) error {
	doc, err := Read(ctx, store, cfg)
	if err != nil {
		return err
	}

	doc.UsageRecords = append(doc.UsageRecords, record)

	if err := store.SaveCache(ctx, cfg, doc); err != nil {
		return adaptererr.New(adaptererr.KindPersistence, &adaptererr.CacheUpdateError{Err: err})
	}

	return nil
}

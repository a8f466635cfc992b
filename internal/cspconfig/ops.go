// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cspconfig

import (
	"context"
	"time"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/adaptererr"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/billtime"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
)

// Store is the narrow persistence capability the cspconfig package
// needs from a storage backend (part of the larger set in
// internal/adapter, spec §6.1).
type Store interface {
	GetCSPConfig(ctx context.Context, cfg *config.Config) (*Document, bool, error)
	SaveCSPConfig(ctx context.Context, cfg *config.Config, doc *Document) error
}

// Create initializes the CSP config document if one does not already
// exist (spec §4.4 "create").
func Create(ctx context.Context, store Store, cfg *config.Config) (*Document, error) {
	existing, ok, err := store.GetCSPConfig(ctx, cfg)
	if err != nil {
		return nil, adaptererr.New(adaptererr.KindPersistence, err)
	}
	if ok {
		return existing, nil
	}

	now := billtime.Now()
	doc := &Document{
		BillingAPIAccessOK: true,
		Timestamp:          now,
		Expire:             now.Add(cfg.ReportingInterval()),
		Errors:             []string{},
	}

	if err := store.SaveCSPConfig(ctx, cfg, doc); err != nil {
		return nil, adaptererr.New(adaptererr.KindPersistence, err)
	}

	return doc, nil
}

// Result describes the outcome of a single metering attempt, as
// produced by internal/pipeline and applied here via Update.
type Result struct {
	Success    bool
	Error      string
	Usage      map[string]int64
	LastBilled *time.Time
}

// Update applies the outcome of a metering attempt (spec §4.4
// "update"). On success it clears the accumulated errors and
// advances timestamp/expire; on failure it appends to the bounded
// errors list and leaves timestamp/expire untouched.
func Update(ctx context.Context, store Store, cfg *config.Config, result Result) (*Document, error) {
	doc, ok, err := store.GetCSPConfig(ctx, cfg)
	if err != nil {
		return nil, adaptererr.New(adaptererr.KindPersistence, err)
	}
	if !ok {
		return nil, adaptererr.New(adaptererr.KindPersistence, errNoDocument)
	}

	if result.Success {
		now := billtime.Now()
		doc.BillingAPIAccessOK = true
		doc.Timestamp = now
		doc.Expire = now.Add(cfg.ReportingInterval())
		doc.Errors = []string{}
		if result.Usage != nil {
			doc.Usage = result.Usage
		}
		if result.LastBilled != nil {
			doc.LastBilled = result.LastBilled
		}
	} else {
		doc.BillingAPIAccessOK = false
		doc.Errors = appendBounded(doc.Errors, result.Error, cfg.MaxErrorsOrDefault())
	}

	if err := store.SaveCSPConfig(ctx, cfg, doc); err != nil {
		return nil, adaptererr.New(adaptererr.KindPersistence, err)
	}

	return doc, nil
}

// appendBounded appends msg to errs, dropping the oldest entries once
// the list would exceed max (spec §4.4, §9 Open Question 1).
func appendBounded(errs []string, msg string, max int) []string {
	out := append(errs, msg)
	if len(out) > max {
		out = out[len(out)-max:]
	}
	return out
}

var errNoDocument = &noDocumentError{}

type noDocumentError struct{}

func (e *noDocumentError) Error() string {
	return "csp config document does not exist"
}

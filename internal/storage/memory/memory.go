// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package memory implements an in-process storage backend, used for
// local runs and tests where no durable store is needed. It
// satisfies internal/adapter.StorageBackend structurally; the
// registry binds to it by "kind": "memory" (spec §6.1).
package memory

import (
	"context"
	"sync"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/cache"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/cspconfig"
)

// Backend holds both documents behind one mutex. It is safe for
// concurrent use, though the pipeline only ever drives it from a
// single goroutine at a time.
type Backend struct {
	mu        sync.Mutex
	cacheDoc  *cache.Document
	cspDoc    *cspconfig.Document
}

// New returns an empty backend; both documents are created on first
// access via cache.Create / cspconfig.Create.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) SetupAdapter(ctx context.Context, cfg *config.Config) error {
	return nil
}

func (b *Backend) GetCache(ctx context.Context, cfg *config.Config) (*cache.Document, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cacheDoc == nil {
		return nil, false, nil
	}
	doc := *b.cacheDoc
	return &doc, true, nil
}

func (b *Backend) SaveCache(ctx context.Context, cfg *config.Config, doc *cache.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	saved := *doc
	b.cacheDoc = &saved
	return nil
}

func (b *Backend) GetCSPConfig(ctx context.Context, cfg *config.Config) (*cspconfig.Document, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cspDoc == nil {
		return nil, false, nil
	}
	doc := *b.cspDoc
	return &doc, true, nil
}

func (b *Backend) SaveCSPConfig(ctx context.Context, cfg *config.Config, doc *cspconfig.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	saved := *doc
	b.cspDoc = &saved
	return nil
}

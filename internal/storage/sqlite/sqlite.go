// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sqlite implements a durable storage backend on top of
// sqlx and mattn/go-sqlite3, grounded on the teacher's repository
// package (dbConnection.go's sqlx.Open wiring, userConfig.go's
// REPLACE INTO document-upsert idiom). Both persisted documents are
// stored as single rows of opaque JSON, the same pattern the teacher
// uses for per-user UI config blobs.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/adaptererr"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/alog"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/cache"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/cspconfig"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	docCache  = "cache"
	docConfig = "csp_config"
)

// Backend persists the cache and CSP config documents as JSON blobs
// in a single "documents" table, keyed by name.
type Backend struct {
	db *sqlx.DB
}

// Config carries the sqlite backend's own parameters, sourced from
// config.BackendBinding.Params under the "path" key.
type Config struct {
	Path string
}

// New opens (creating if necessary) the sqlite file at cfg.Path.
func New(cfg Config) (*Backend, error) {
	db, err := sqlx.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	return &Backend{db: db}, nil
}

func (b *Backend) SetupAdapter(ctx context.Context, cfg *config.Config) error {
	const ddl = `CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		data TEXT NOT NULL
	)`
	if _, err := b.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: setup: %w", err)
	}
	return nil
}

func (b *Backend) GetCache(ctx context.Context, cfg *config.Config) (*cache.Document, bool, error) {
	raw, ok, err := b.get(ctx, docCache)
	if err != nil || !ok {
		return nil, ok, err
	}
	var doc cache.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, fmt.Errorf("sqlite: decode cache document: %w", err)
	}
	return &doc, true, nil
}

func (b *Backend) SaveCache(ctx context.Context, cfg *config.Config, doc *cache.Document) error {
	return b.save(ctx, docCache, doc)
}

func (b *Backend) GetCSPConfig(ctx context.Context, cfg *config.Config) (*cspconfig.Document, bool, error) {
	raw, ok, err := b.get(ctx, docConfig)
	if err != nil || !ok {
		return nil, ok, err
	}
	var doc cspconfig.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, fmt.Errorf("sqlite: decode csp config document: %w", err)
	}
	return &doc, true, nil
}

func (b *Backend) SaveCSPConfig(ctx context.Context, cfg *config.Config, doc *cspconfig.Document) error {
	return b.save(ctx, docConfig, doc)
}

func (b *Backend) get(ctx context.Context, name string) ([]byte, bool, error) {
	var data string
	err := b.db.GetContext(ctx, &data, `SELECT data FROM documents WHERE name = ?`, name)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: select %s: %w", name, err)
	}
	return []byte(data), true, nil
}

func (b *Backend) save(ctx context.Context, name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return adaptererr.New(adaptererr.KindPersistence, fmt.Errorf("sqlite: encode %s: %w", name, err))
	}
	if _, err := b.db.ExecContext(ctx, `REPLACE INTO documents (name, data) VALUES (?, ?)`, name, string(data)); err != nil {
		alog.Warnf("sqlite: replace %s in DB failed: %s", name, err)
		return adaptererr.New(adaptererr.KindPersistence, fmt.Errorf("sqlite: replace %s: %w", name, err))
	}
	return nil
}

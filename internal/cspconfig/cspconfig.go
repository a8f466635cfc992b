// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cspconfig implements the persisted CSP config document: the
// billing health status, last-billed summary, accumulated errors, and
// expiry deadline a downstream consumer watches (spec §3, §4.4).
package cspconfig

import (
	"encoding/json"
	"time"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/billtime"
)

// Document is the single persisted CSP config instance (spec §3).
type Document struct {
	BillingAPIAccessOK bool
	Timestamp          time.Time
	Expire             time.Time
	Errors             []string
	Usage              map[string]int64
	LastBilled         *time.Time
}

func (d Document) MarshalJSON() ([]byte, error) {
	type alias struct {
		BillingAPIAccessOK bool             `json:"billing_api_access_ok"`
		Timestamp          string           `json:"timestamp"`
		Expire             string           `json:"expire"`
		Errors             []string         `json:"errors"`
		Usage              map[string]int64 `json:"usage,omitempty"`
		LastBilled         string           `json:"last_billed,omitempty"`
	}

	errs := d.Errors
	if errs == nil {
		errs = []string{}
	}

	a := alias{
		BillingAPIAccessOK: d.BillingAPIAccessOK,
		Timestamp:          billtime.Format(d.Timestamp),
		Expire:             billtime.Format(d.Expire),
		Errors:             errs,
		Usage:              d.Usage,
	}
	if d.LastBilled != nil {
		a.LastBilled = billtime.Format(*d.LastBilled)
	}

	return json.Marshal(a)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var alias struct {
		BillingAPIAccessOK bool             `json:"billing_api_access_ok"`
		Timestamp          string           `json:"timestamp"`
		Expire             string           `json:"expire"`
		Errors             []string         `json:"errors"`
		Usage              map[string]int64 `json:"usage,omitempty"`
		LastBilled         string           `json:"last_billed,omitempty"`
	}
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	ts, err := billtime.Parse(alias.Timestamp)
	if err != nil {
		return err
	}
	exp, err := billtime.Parse(alias.Expire)
	if err != nil {
		return err
	}

	doc := Document{
		BillingAPIAccessOK: alias.BillingAPIAccessOK,
		Timestamp:          ts,
		Expire:             exp,
		Errors:             alias.Errors,
		Usage:              alias.Usage,
	}
	if alias.LastBilled != "" {
		lb, err := billtime.Parse(alias.LastBilled)
		if err != nil {
			return err
		}
		doc.LastBilled = &lb
	}

	*d = doc
	return nil
}

// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package billtime provides the time and billing-period arithmetic
// the adapter builds its temporal invariants on. Timestamps are
// always UTC instants, serialized with second precision.
package billtime

import "time"

// Layout is the fixed ISO-8601 textual form used for every persisted
// timestamp: UTC, second precision.
const Layout = "2006-01-02T15:04:05Z"

// Now returns the current UTC instant.
func Now() time.Time {
	return time.Now().UTC()
}

// Format renders t in the adapter's fixed textual form.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse reads the adapter's fixed textual form back into a UTC time.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// NextBillTime returns the end of the billing period that starts at t.
func NextBillTime(t time.Time, billingInterval time.Duration) time.Time {
	return t.Add(billingInterval)
}

// PrevBillTime returns the start of the billing period that ends at t.
func PrevBillTime(t time.Time, billingInterval time.Duration) time.Time {
	return t.Add(-billingInterval)
}

// AddSeconds returns t advanced by the given number of seconds, positive
// or negative. It mirrors the reference implementation's get_date_delta,
// for callers that reason in seconds rather than time.Duration.
func AddSeconds(t time.Time, seconds int) time.Time {
	return t.Add(time.Duration(seconds) * time.Second)
}

// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package billing

import (
	"fmt"
	"time"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/billtime"
	"github.com/google/uuid"
)

// recordIDNamespace scopes the deterministic record IDs derived by
// RecordID from the rest of UUID space.
var recordIDNamespace = uuid.MustParse("9d9a3a1a-9d9f-4a6c-8f4d-4d6a7c9b0a11")

// RecordID derives the idempotency key a metering submission carries
// for one billing period, from the period's bounding timestamps
// (spec §9 Open Question: "caller-assigned record_id derived from
// (adapter_start_time, next_bill_time)"). Recomputing it from the
// same two timestamps always yields the same value, so a retried
// submission for a period whose cache write failed carries the same
// key as the original attempt, letting the metering backend dedupe.
func RecordID(adapterStartTime, nextBillTime time.Time) string {
	name := fmt.Sprintf("%s|%s", billtime.Format(adapterStartTime), billtime.Format(nextBillTime))
	return uuid.NewSHA1(recordIDNamespace, []byte(name)).String()
}

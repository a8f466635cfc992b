// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cache implements the usage-record cache document: unbilled
// samples plus the next-bill/next-report deadlines and the last bill
// summary (spec §3, §4.3).
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/billtime"
)

// UsageRecord is one sample produced by the sampling backend:
// reporting_time plus one integer per declared metric. It marshals to
// a flat JSON object, matching the reference implementation's plain
// dict representation.
type UsageRecord struct {
	ReportingTime time.Time
	Metrics       map[string]int64
}

func (r UsageRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Metrics)+1)
	for k, v := range r.Metrics {
		out[k] = v
	}
	out["reporting_time"] = billtime.Format(r.ReportingTime)
	return json.Marshal(out)
}

func (r *UsageRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	metrics := make(map[string]int64, len(raw))
	for k, v := range raw {
		if k == "reporting_time" {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("usage record reporting_time: %w", err)
			}
			t, err := billtime.Parse(s)
			if err != nil {
				return fmt.Errorf("usage record reporting_time: %w", err)
			}
			r.ReportingTime = t
			continue
		}
		var n int64
		if err := json.Unmarshal(v, &n); err != nil {
			return fmt.Errorf("usage record metric %q: %w", k, err)
		}
		metrics[k] = n
	}
	r.Metrics = metrics
	return nil
}

// LastBill summarizes the most recently submitted real bill. The
// zero value (empty RecordID) represents "no bill yet" (spec §3:
// last_bill "or empty").
type LastBill struct {
	Dimensions   map[string]int64 `json:"dimensions,omitempty"`
	MeteringTime time.Time        `json:"-"`
	RecordID     string           `json:"record_id,omitempty"`
}

func (b LastBill) IsEmpty() bool {
	return b.RecordID == ""
}

func (b LastBill) MarshalJSON() ([]byte, error) {
	if b.IsEmpty() {
		return []byte(`{}`), nil
	}
	type alias struct {
		Dimensions   map[string]int64 `json:"dimensions"`
		MeteringTime string           `json:"metering_time"`
		RecordID     string           `json:"record_id"`
	}
	return json.Marshal(alias{
		Dimensions:   b.Dimensions,
		MeteringTime: billtime.Format(b.MeteringTime),
		RecordID:     b.RecordID,
	})
}

func (b *LastBill) UnmarshalJSON(data []byte) error {
	var alias struct {
		Dimensions   map[string]int64 `json:"dimensions"`
		MeteringTime string           `json:"metering_time"`
		RecordID     string           `json:"record_id"`
	}
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	if alias.RecordID == "" {
		*b = LastBill{}
		return nil
	}
	var t time.Time
	if alias.MeteringTime != "" {
		parsed, err := billtime.Parse(alias.MeteringTime)
		if err != nil {
			return fmt.Errorf("last_bill metering_time: %w", err)
		}
		t = parsed
	}
	*b = LastBill{
		Dimensions:   alias.Dimensions,
		MeteringTime: t,
		RecordID:     alias.RecordID,
	}
	return nil
}

// Document is the single persisted cache instance (spec §3).
type Document struct {
	AdapterStartTime  time.Time
	NextBillTime      time.Time
	NextReportingTime time.Time
	UsageRecords      []UsageRecord
	LastBill          LastBill
}

func (d Document) MarshalJSON() ([]byte, error) {
	type alias struct {
		AdapterStartTime  string        `json:"adapter_start_time"`
		NextBillTime      string        `json:"next_bill_time"`
		NextReportingTime string        `json:"next_reporting_time"`
		UsageRecords      []UsageRecord `json:"usage_records"`
		LastBill          LastBill      `json:"last_bill"`
	}
	records := d.UsageRecords
	if records == nil {
		records = []UsageRecord{}
	}
	return json.Marshal(alias{
		AdapterStartTime:  billtime.Format(d.AdapterStartTime),
		NextBillTime:      billtime.Format(d.NextBillTime),
		NextReportingTime: billtime.Format(d.NextReportingTime),
		UsageRecords:      records,
		LastBill:          d.LastBill,
	})
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var alias struct {
		AdapterStartTime  string        `json:"adapter_start_time"`
		NextBillTime      string        `json:"next_bill_time"`
		NextReportingTime string        `json:"next_reporting_time"`
		UsageRecords      []UsageRecord `json:"usage_records"`
		LastBill          LastBill      `json:"last_bill"`
	}
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	parse := func(field, s string) (time.Time, error) {
		t, err := billtime.Parse(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("cache document %s: %w", field, err)
		}
		return t, nil
	}

	start, err := parse("adapter_start_time", alias.AdapterStartTime)
	if err != nil {
		return err
	}
	nextBill, err := parse("next_bill_time", alias.NextBillTime)
	if err != nil {
		return err
	}
	nextReport, err := parse("next_reporting_time", alias.NextReportingTime)
	if err != nil {
		return err
	}

	*d = Document{
		AdapterStartTime:  start,
		NextBillTime:      nextBill,
		NextReportingTime: nextReport,
		UsageRecords:      alias.UsageRecords,
		LastBill:          alias.LastBill,
	}
	return nil
}

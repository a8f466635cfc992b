// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package billing

import (
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/adaptererr"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
)

// MapDimensions converts a billable-usage quantity per metric into
// the metering dimensions the CSP marketplace API expects, by
// picking the first configured tier whose [minimum, maximum] range
// contains the quantity (spec §4.6). Mapping is atomic: if any
// metric's quantity matches no tier, MapDimensions returns
// *adaptererr.NoMatchingVolumeDimensionError and no partial result.
func MapDimensions(usage map[string]int64, cfg *config.Config) (map[string]int64, error) {
	dims := make(map[string]int64, len(usage))

	for metric, qty := range usage {
		m, ok := cfg.UsageMetrics[metric]
		if !ok {
			continue
		}

		matched := false
		for _, tier := range m.Dimensions {
			if tier.Contains(qty) {
				dims[tier.Dimension] = qty
				matched = true
				break
			}
		}

		if !matched {
			return nil, &adaptererr.NoMatchingVolumeDimensionError{Metric: metric, Value: qty}
		}
	}

	return dims, nil
}

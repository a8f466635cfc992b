// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"sort"
)

// validateTiers checks that each metric's declared tiers cover
// [0, infinity) without gaps or overlaps, as spec §3 requires. Tier
// declaration order is irrelevant to this check (it matters only for
// first-match selection during billing, see internal/billing).
func validateTiers(metrics map[string]UsageMetric) error {
	for name, m := range metrics {
		tiers := append([]Tier(nil), m.Dimensions...)
		sort.Slice(tiers, func(i, j int) bool {
			return tiers[i].Minimum < tiers[j].Minimum
		})

		if len(tiers) == 0 {
			return fmt.Errorf("metric %q: no dimensions declared", name)
		}
		if tiers[0].Minimum != 0 {
			return fmt.Errorf("metric %q: tiers must start at 0, first tier starts at %d", name, tiers[0].Minimum)
		}

		unboundedSeen := false
		for i, t := range tiers {
			if unboundedSeen {
				return fmt.Errorf("metric %q: tier %q declared after an unbounded tier", name, t.Dimension)
			}
			if t.Maximum == nil {
				unboundedSeen = true
				continue
			}
			if *t.Maximum < t.Minimum {
				return fmt.Errorf("metric %q: tier %q has maximum < minimum", name, t.Dimension)
			}
			if i+1 < len(tiers) {
				next := tiers[i+1]
				switch {
				case next.Minimum > *t.Maximum+1:
					return fmt.Errorf("metric %q: gap between tier %q (max %d) and tier %q (min %d)",
						name, t.Dimension, *t.Maximum, next.Dimension, next.Minimum)
				case next.Minimum <= *t.Maximum:
					return fmt.Errorf("metric %q: overlap between tier %q (max %d) and tier %q (min %d)",
						name, t.Dimension, *t.Maximum, next.Dimension, next.Minimum)
				}
			}
		}
		if !unboundedSeen {
			return fmt.Errorf("metric %q: tiers do not cover an unbounded top end", name)
		}
	}

	return nil
}

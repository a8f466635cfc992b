// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/adaptererr"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/alog"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the environment variable that locates the
// adapter's YAML config file.
const EnvConfigFile = "CSP_ADAPTER_CONFIG_FILE"

// DefaultConfigPath is used when EnvConfigFile is unset.
const DefaultConfigPath = "/etc/csp_billing_adapter/config.yaml"

// ResolvePath returns the configured config file path, or
// DefaultConfigPath if CSP_ADAPTER_CONFIG_FILE is unset.
func ResolvePath() string {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return p
	}
	return DefaultConfigPath
}

// Load reads, validates, and decodes the adapter config file at path.
// Failures here are always adaptererr.KindConfiguration: malformed
// YAML, a schema violation, or a tier gap are all fatal at startup
// per spec §7.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, adaptererr.New(adaptererr.KindConfiguration, fmt.Errorf("read config file %s: %w", path, err))
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, adaptererr.New(adaptererr.KindConfiguration, fmt.Errorf("parse yaml config: %w", err))
	}

	asJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, adaptererr.New(adaptererr.KindConfiguration, fmt.Errorf("re-encode config as json: %w", err))
	}

	if err := validateSchema(asJSON); err != nil {
		return nil, adaptererr.New(adaptererr.KindConfiguration, err)
	}

	if err := validateTiers(cfg.UsageMetrics); err != nil {
		return nil, adaptererr.New(adaptererr.KindConfiguration, err)
	}

	if cfg.BillingIntervalSeconds%cfg.ReportingIntervalSeconds != 0 {
		alog.Warnf("billing_interval (%ds) is not a multiple of reporting_interval (%ds); "+
			"heartbeat cadence will drift relative to bill boundaries",
			cfg.BillingIntervalSeconds, cfg.ReportingIntervalSeconds)
	}

	return &cfg, nil
}

// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package adapter

import (
	"context"
	"fmt"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/adaptererr"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
	awsmetering "github.com/csp-billing-adapter/csp-billing-adapter/internal/metering/aws"
	localmetering "github.com/csp-billing-adapter/csp-billing-adapter/internal/metering/local"
	localsampling "github.com/csp-billing-adapter/csp-billing-adapter/internal/sampling/local"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/storage/memory"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/storage/sqlite"
)

// Build binds the three capability sets to concrete implementations
// named by cfg.Backends, replacing the reference implementation's
// pluggy entrypoint discovery with an explicit, config-driven
// registry (spec §9). An unrecognized "kind" is a
// KindBackendUnavailable error, fatal at startup (spec §7).
func Build(ctx context.Context, cfg *config.Config) (*Registry, error) {
	sampling, err := buildSampling(cfg.Backends.Sampling)
	if err != nil {
		return nil, err
	}

	storage, err := buildStorage(ctx, cfg.Backends.Storage)
	if err != nil {
		return nil, err
	}

	metering, err := buildMetering(ctx, cfg.Backends.Metering)
	if err != nil {
		return nil, err
	}

	return &Registry{Sampling: sampling, Storage: storage, Metering: metering}, nil
}

func buildSampling(binding config.BackendBinding) (SamplingBackend, error) {
	switch binding.Kind {
	case "local", "":
		return localsampling.New(), nil
	default:
		return nil, unavailable("sampling", binding.Kind)
	}
}

func buildStorage(ctx context.Context, binding config.BackendBinding) (StorageBackend, error) {
	switch binding.Kind {
	case "memory", "":
		return memory.New(), nil
	case "sqlite":
		path, _ := stringParam(binding.Params, "path")
		if path == "" {
			path = "csp_billing_adapter.db"
		}
		backend, err := sqlite.New(sqlite.Config{Path: path})
		if err != nil {
			return nil, adaptererr.New(adaptererr.KindBackendUnavailable, err)
		}
		return backend, nil
	default:
		return nil, unavailable("storage", binding.Kind)
	}
}

func buildMetering(ctx context.Context, binding config.BackendBinding) (MeteringBackend, error) {
	switch binding.Kind {
	case "local", "":
		failOneIn, _ := intParam(binding.Params, "fail_one_in")
		seed, _ := intParam(binding.Params, "seed")
		return localmetering.New(failOneIn, int64(seed)), nil
	case "aws":
		region, _ := stringParam(binding.Params, "region")
		productCode, _ := stringParam(binding.Params, "product_code")
		customerID, _ := stringParam(binding.Params, "customer_identifier")
		backend, err := awsmetering.New(ctx, awsmetering.Config{
			Region:             region,
			ProductCode:        productCode,
			CustomerIdentifier: customerID,
		})
		if err != nil {
			return nil, adaptererr.New(adaptererr.KindBackendUnavailable, err)
		}
		return backend, nil
	default:
		return nil, unavailable("metering", binding.Kind)
	}
}

func unavailable(capability, kind string) error {
	return adaptererr.New(adaptererr.KindBackendUnavailable,
		fmt.Errorf("no %s backend registered for kind %q", capability, kind))
}

func stringParam(params map[string]interface{}, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func intParam(params map[string]interface{}, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package adapter

import (
	"context"
	"testing"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/adaptererr"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"
	localmetering "github.com/csp-billing-adapter/csp-billing-adapter/internal/metering/local"
	localsampling "github.com/csp-billing-adapter/csp-billing-adapter/internal/sampling/local"
	"github.com/csp-billing-adapter/csp-billing-adapter/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBindsDefaultKinds(t *testing.T) {
	reg, err := Build(context.Background(), &config.Config{})
	require.NoError(t, err)

	assert.IsType(t, &localsampling.Backend{}, reg.Sampling)
	assert.IsType(t, &memory.Backend{}, reg.Storage)
	assert.IsType(t, &localmetering.Backend{}, reg.Metering)
}

func TestBuildBindsNamedKinds(t *testing.T) {
	cfg := &config.Config{
		Backends: config.Backends{
			Sampling: config.BackendBinding{Kind: "local"},
			Storage:  config.BackendBinding{Kind: "memory"},
			Metering: config.BackendBinding{Kind: "local", Params: map[string]interface{}{"fail_one_in": 4, "seed": 7}},
		},
	}

	reg, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &localmetering.Backend{}, reg.Metering)
}

func TestBuildRejectsUnknownSamplingKind(t *testing.T) {
	cfg := &config.Config{Backends: config.Backends{Sampling: config.BackendBinding{Kind: "nonexistent"}}}

	_, err := Build(context.Background(), cfg)
	require.Error(t, err)

	var derr *adaptererr.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, adaptererr.KindBackendUnavailable, derr.Kind)
}

func TestBuildRejectsUnknownStorageKind(t *testing.T) {
	cfg := &config.Config{Backends: config.Backends{Storage: config.BackendBinding{Kind: "nonexistent"}}}

	_, err := Build(context.Background(), cfg)
	require.Error(t, err)

	var derr *adaptererr.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, adaptererr.KindBackendUnavailable, derr.Kind)
}

func TestBuildRejectsUnknownMeteringKind(t *testing.T) {
	cfg := &config.Config{Backends: config.Backends{Metering: config.BackendBinding{Kind: "nonexistent"}}}

	_, err := Build(context.Background(), cfg)
	require.Error(t, err)

	var derr *adaptererr.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, adaptererr.KindBackendUnavailable, derr.Kind)
}

func TestBuildRejectsAwsMeteringWithoutProductCode(t *testing.T) {
	cfg := &config.Config{Backends: config.Backends{Metering: config.BackendBinding{Kind: "aws"}}}

	_, err := Build(context.Background(), cfg)
	require.Error(t, err)

	var derr *adaptererr.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, adaptererr.KindBackendUnavailable, derr.Kind)
}

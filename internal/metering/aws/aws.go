// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package aws implements a metering backend against the AWS
// Marketplace Metering Service, grounded on the teacher's S3Target
// wiring (pkg/archive/parquet/target.go): aws-sdk-go-v2's
// config.LoadDefaultConfig plus a single generated service client
// held for the backend's lifetime. It satisfies
// internal/adapter.MeteringBackend; the registry binds to it by
// "kind": "aws" (spec §6.1).
package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/csp-billing-adapter/csp-billing-adapter/internal/config"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/marketplacemetering"
	mmtypes "github.com/aws/aws-sdk-go-v2/service/marketplacemetering/types"
)

// Config carries the aws backend's own parameters, sourced from
// config.BackendBinding.Params.
type Config struct {
	Region             string
	ProductCode        string
	CustomerIdentifier string
}

// Backend submits usage to AWS Marketplace Metering via
// BatchMeterUsage, one UsageRecord per mapped dimension. The service
// itself deduplicates records for the same dimension within the same
// hour, so idempotencyKey is accepted for interface symmetry with
// the other metering backends but not sent on the wire.
type Backend struct {
	client  *marketplacemetering.Client
	cfg     Config
}

// New resolves AWS credentials through the default provider chain
// (environment, shared config, or an attached instance/task role)
// and constructs the metering client.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.ProductCode == "" {
		return nil, fmt.Errorf("aws metering backend: empty product code")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("aws metering backend: load AWS config: %w", err)
	}

	return &Backend{
		client: marketplacemetering.NewFromConfig(awsCfg),
		cfg:    cfg,
	}, nil
}

func (b *Backend) MeterBilling(
	ctx context.Context,
	cfg *config.Config,
	dimensions map[string]int64,
	timestamp time.Time,
	idempotencyKey string,
	dryRun bool,
) (string, error) {
	records := make([]mmtypes.UsageRecord, 0, len(dimensions))
	for dimension, qty := range dimensions {
		records = append(records, mmtypes.UsageRecord{
			Timestamp:          awssdk.Time(timestamp),
			CustomerIdentifier: awssdk.String(b.cfg.CustomerIdentifier),
			Dimension:          awssdk.String(dimension),
			Quantity:           awssdk.Int32(int32(qty)),
		})
	}

	if dryRun || len(records) == 0 {
		return idempotencyKey, nil
	}

	out, err := b.client.BatchMeterUsage(ctx, &marketplacemetering.BatchMeterUsageInput{
		ProductCode: awssdk.String(b.cfg.ProductCode),
		UsageRecords: records,
	})
	if err != nil {
		return "", fmt.Errorf("aws metering backend: BatchMeterUsage: %w", err)
	}

	var recordIDs []string
	for _, result := range out.Results {
		if result.Status == mmtypes.UsageRecordResultStatusCustomerNotSubscribed ||
			result.Status == mmtypes.UsageRecordResultStatusDuplicateRecord {
			continue
		}
		if result.MeteringRecordId != nil {
			recordIDs = append(recordIDs, *result.MeteringRecordId)
		}
	}

	if len(out.UnprocessedRecords) > 0 {
		return "", fmt.Errorf("aws metering backend: %d unprocessed usage records", len(out.UnprocessedRecords))
	}

	if len(recordIDs) == 0 {
		return idempotencyKey, nil
	}

	return strings.Join(recordIDs, ","), nil
}

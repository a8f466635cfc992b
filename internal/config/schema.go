// Copyright (C) 2026 csp-billing-adapter contributors.
// All rights reserved. This file is part of csp-billing-adapter.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

// configSchema validates the shape of a decoded adapter config
// document (after the YAML file is round-tripped to JSON). It checks
// mandatory fields, field types, enum values and lower bounds;
// tier-gap coverage is checked separately by
// validateTiers since JSON Schema cannot express "covers [0, inf)
// without gaps" for an arbitrary ordered tier list.
var configSchema = `
{
  "type": "object",
  "properties": {
    "query_interval": {
      "description": "Seconds between usage-sampling ticks.",
      "type": "integer",
      "minimum": 1
    },
    "reporting_interval": {
      "description": "Seconds between liveness heartbeats when no bill is due.",
      "type": "integer",
      "minimum": 1
    },
    "billing_interval": {
      "description": "Length of a billing period, in seconds.",
      "type": "integer",
      "minimum": 1
    },
    "usage_metrics": {
      "description": "Per-metric aggregation and tier configuration.",
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "properties": {
          "usage_aggregate": {
            "type": "string",
            "enum": ["average", "maximum"]
          },
          "consumption_reporting": {
            "type": "string",
            "enum": ["volume"]
          },
          "dimensions": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "properties": {
                "dimension": { "type": "string" },
                "minimum": { "type": "integer" },
                "maximum": { "type": "integer" }
              },
              "required": ["dimension", "minimum"]
            }
          }
        },
        "required": ["usage_aggregate", "consumption_reporting", "dimensions"]
      }
    },
    "backends": {
      "description": "Plug-in bindings for the sampling, storage, and metering backends.",
      "type": "object",
      "properties": {
        "sampling": { "$ref": "#/$defs/binding" },
        "storage": { "$ref": "#/$defs/binding" },
        "metering": { "$ref": "#/$defs/binding" }
      },
      "required": ["sampling", "storage", "metering"]
    },
    "max_errors": {
      "type": "integer",
      "minimum": 1
    },
    "log_level": {
      "type": "string"
    }
  },
  "$defs": {
    "binding": {
      "type": "object",
      "properties": {
        "kind": { "type": "string" },
        "params": { "type": "object" }
      },
      "required": ["kind"]
    }
  },
  "required": ["query_interval", "reporting_interval", "billing_interval", "usage_metrics", "backends"]
}`

// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

// Package config loads and validates application configuration with
// Koanf v2, layering defaults, an optional YAML file and environment
// variables (highest priority).
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	db, err := database.New(&cfg.Database)
package config

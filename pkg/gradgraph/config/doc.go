/*
Package config provides type-safe configuration extraction from map[string]any.

# Overview

config wraps a map[string]any and provides typed accessor methods that handle
missing keys and type mismatches gracefully by returning default values.
Its main job is loading experiment files: YAML or JSON documents that bind
named graph leaves to numeric values.

# Basic Usage

Create a Config from any map and extract values with defaults:

	cfg := config.New(map[string]any{
	    "expression": "d * (a + b * c)",
	    "steps":      100,
	    "verbose":    true,
	})

	expression := cfg.String("expression", "") // "d * (a + b * c)"
	steps := cfg.Int("steps", 10)              // 100
	verbose := cfg.Bool("verbose", false)      // true
	missing := cfg.Float("rate", 0.01)         // 0.01

# Binding Graph Inputs

Floats collects every numeric value into a map[string]float64, which plugs
directly into Graph.SetValues:

	cfg, err := config.FromFile("experiment.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	if err := g.SetValues(cfg.Section("inputs").Floats()); err != nil {
	    log.Fatal(err)
	}

Section extracts a nested map, so input bindings can live under their own
key alongside other settings:

	expression: d * (a + b * c)
	inputs:
	  a: 5
	  b: 3
	  c: 2
	  d: 3

# Type Coercion

Numeric types handle reasonable conversions:
  - int from float64 (only if no fractional part)
  - float64 from int, int64, float32

All methods return the default value if:
  - The key is missing
  - The value cannot be converted to the requested type
  - The conversion would lose precision (e.g., float to int with fraction)

# File Loading

Load configuration from YAML or JSON files:

	cfg, err := config.FromFile("experiment.yaml")

	// Or load from bytes
	cfg, err = config.FromYAML(yamlBytes)
	cfg, err = config.FromJSON(jsonBytes)

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation. However, if the original map is modified
externally, behavior is undefined.
*/
package config

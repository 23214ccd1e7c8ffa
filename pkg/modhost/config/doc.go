/*
Package config provides type-safe settings extraction from map[string]any.

# Overview

config wraps a map[string]any and provides typed accessor methods that handle
missing keys and type mismatches gracefully by returning default values.
Module settings arrive from YAML/JSON files where values are frequently
written as text, so Bool and Int also accept strings:

	cfg := config.New(map[string]any{
	    "enabled": "True",
	    "hotkey":  "0x7A",
	    "retries": 3,
	})

	enabled := cfg.Bool("enabled", false) // true
	hotkey := cfg.Int("hotkey", 0)        // 122
	retries := cfg.Int("retries", 5)      // 3
	missing := cfg.String("missing", "x") // "x"

# Sections

A settings file holds one section per module, keyed by module name:

	chatlog:
	  capacity: 100
	keyblock:
	  enabled: true
	  keys: ["0x7A", "27"]

Section looks a module's block up case-insensitively:

	cfg.Section("ChatLog").Int("capacity", 50) // 100

# Type Coercion

Int and IntSlice accept YAML/JSON numbers and number text in any base
("27", "0x1B", "033"). Bool accepts booleans and "true"/"false" in any case.

All methods return the default value if:
  - The key is missing
  - The value cannot be converted to the requested type
  - The conversion would lose precision (e.g., float to int with fraction)

# File Loading

	cfg, err := config.FromFile("settings.yaml")

A Source defers loading until settings are needed, so reloading a module
host re-reads the file:

	src := config.FileSource("settings.yaml")
	cfg, err := src()

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation. However, if the original map is modified
externally, behavior is undefined.
*/
package config

// Package config provides configuration structures and utilities for walinks.
//
// Settings are layered: built-in defaults, then WALINKS_* environment
// variables (optionally from a .env file), then the YAML site file
// (.walinks), then CLI flags. The site file adds per-host overrides for
// depth, delay, cookies, headers and path patterns.
package config

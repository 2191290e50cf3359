// Package config loads, normalizes, and validates lectureiq client
// configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the LECTUREIQ_API_URL
// environment fallback. The Config type centralizes every knob the CLI
// needs: the API endpoint, request timeout, polling intervals, and the
// state/log directories holding the persisted session and log files.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

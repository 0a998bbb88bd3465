// Package config loads, normalizes, and validates harnessutil configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and resolves the webhook URL from the
// environment when the file leaves it blank. Optional .env files are loaded
// before that lookup so CI runners can keep secrets out of the config file.
//
// The environment is consulted here and nowhere else: downstream packages
// receive the resolved values through Config.
package config

// Package config loads and validates application configuration.
//
// Configuration is layered: built-in defaults, then an optional YAML file
// (config.yaml, configs/config.yaml, or $MFS_CONFIG_FILE), then MFS_-prefixed
// environment variables. The single most consequential toggle is
// Pipeline.AllowFallback, which decides whether exhausting the live source
// chain degrades to the embedded dataset or terminates the run.
package config

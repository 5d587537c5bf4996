package config

import "time"

// Application constants.
const (
	AppName    = "MFS Pulse"
	AppVersion = "1.2.0"

	// Network timeouts
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultBrowserTimeout = 60 * time.Second

	// Artifact names
	FlatExportFileName = "mfs_flat.csv"

	// HTTP client identity sent to the statistics portal
	FetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Package exporter writes the pipeline's one persisted artifact: a delimited
// flat table of the cleaned series joined with its derived metrics.
package exporter

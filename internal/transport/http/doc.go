// Package http contains the chi HTTP handlers exposing pipeline results:
// the canonical series, the metrics bundle, the flat CSV export, the
// explicit refresh trigger, and health. Errors render as RFC 7807 problem
// details.
package http

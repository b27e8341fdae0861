// Package api exposes the HTTP trigger surface: transition ingestion, the
// SMTP test-send endpoint, health and metrics.
package api

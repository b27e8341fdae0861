// Package ratelimit provides per-IP rate limiting middleware for the HTTP
// ingestion endpoints.
package ratelimit

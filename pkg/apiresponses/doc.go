// Package apiresponses provides standardized HTTP API response helpers
// (error, bad-request, internal-error, etc.) shared by the API controllers.
package apiresponses

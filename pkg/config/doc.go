// Package config loads and validates the service configuration document.
package config

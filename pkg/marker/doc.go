// Package marker provides short-TTL "seen recently" markers used to rate
// limit repeat notifications, with in-memory and Redis-backed stores.
package marker

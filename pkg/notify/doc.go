// Package notify implements the publication notification decision engine:
// transition classification with rate limiting, recipient resolution across
// role-based and explicit memberships, message composition, and dispatch.
package notify

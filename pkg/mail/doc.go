// Package mail provides the SMTP delivery layer: relay settings with named
// sending accounts, account resolution with defined precedence, and a
// gomail-backed sender with bounded retry.
package mail

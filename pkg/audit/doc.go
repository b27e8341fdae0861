// Package audit records dispatch outcomes to pluggable sinks. Every
// processed transition produces one event naming the classification, the
// resolved recipients and any delivery failures.
package audit

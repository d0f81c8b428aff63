// Package component defines the lifecycle contract shared by catapult's
// long-lived pieces (a connected storage backend, a queue connection) and a
// registry that starts them in order and stops them in reverse.
package component

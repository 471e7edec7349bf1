// Package tools provides host process helpers used by the agent handlers.
//
// Ownership boundary:
// - command execution helpers (wait for exit or start detached)
//
// - environment overlay for launched processes
package tools

// Package handler implements the agent side request handlers: a tag router
// and the built-in Text, Notify and Launch handlers.
package handler

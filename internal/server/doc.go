// Package server runs the agent: a TCP accept loop that hands each
// connection to a session.Dispatcher, plus an optional metrics endpoint.
package server

// Package main hosts the skknicheck CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration, wires the SerpAPI client,
// rate limiter, store backend and notification channels, and hands them to
// the workflow runner. Commands stay thin: behaviour lives in the internal
// packages and is only surfaced here.
package main

// ABOUTME: Package documentation for the HTTP API client
// ABOUTME: Describes the client surface and error contract

// Package apiclient provides a typed HTTP client for the trading API.
//
// The client is used by the admin CLI and covers the full API surface:
// health, registration, login, identity, market data, AI analysis, and
// the admin endpoints (user listing, plan upgrades, settings).
//
// Authentication uses a bearer token set with [Client.SetToken]; a
// successful [Client.Login] stores the returned token automatically.
// Non-2xx responses are returned as [*APIError] with the server's
// error message and status code.
package apiclient

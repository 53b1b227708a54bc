// ABOUTME: Package documentation for the HTTP server assembly
// ABOUTME: Describes component wiring, routes, and shutdown behavior

// Package server assembles and runs the trading API's HTTP server.
//
// # Overview
//
// The server package is the composition root. [New] opens the SQLite store,
// builds the JWT verifier and the account, market, and analysis services,
// and registers every route on a stdlib mux wrapped in the CORS middleware.
//
// # Routes
//
// Public:
//
//	GET  /api/health
//	POST /api/auth/register
//	POST /api/auth/login
//	GET  /api/market/crypto-prices
//
// Authenticated (bearer token):
//
//	GET  /api/auth/me
//	POST /api/analysis/gemini
//
// Admin (bearer token + admin plan):
//
//	GET  /api/admin/settings
//	PUT  /api/admin/settings
//	GET  /api/admin/users
//	PUT  /api/admin/users/{id}/upgrade?new_plan=<plan>
//
// # Error Shape
//
// Every error response is {"error": "<message>"}. Validation and business
// rejections are 400, missing or unusable credentials 401, non-admin access
// to admin routes 403, unknown targets 404, store failures 500, and upstream
// provider failures 502.
//
// # Lifecycle
//
// [Server.Run] listens on the configured address and blocks until the
// context is canceled or a SIGINT/SIGTERM arrives, then drains in-flight
// requests with a bounded graceful shutdown before closing the price cache
// and the store.
package server

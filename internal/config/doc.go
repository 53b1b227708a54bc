// Package config handles configuration loading for the mk7 backend.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${MK7_JWT_SECRET}"
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	auth:
//	  token_ttl: "60m"
//	market:
//	  cache_ttl: "30s"
//	  timeout: "10s"
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8001"
//
// Database:
//
//	database:
//	  path: "/var/lib/mk7/backend.db"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${MK7_JWT_SECRET}"  # required, min 32 bytes
//	  token_ttl: "60m"
//
// Market data and analysis providers:
//
//	market:
//	  base_url: "https://api.coingecko.com/api/v3"
//	analysis:
//	  api_key: "${GEMINI_API_KEY}"
//	  model: "gemini-pro"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config

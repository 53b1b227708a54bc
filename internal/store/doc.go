// Package store provides persistent storage for the trading backend using SQLite.
//
// # Architecture
//
// The store package uses an interface-driven architecture with specialized
// interfaces:
//
//   - UserStore: Account creation, lookup, plan changes, activation
//   - SettingsStore: The admin settings singleton
//   - AuditStore: Append-only log of administrative actions
//
// SQLiteStore implements all interfaces in a single struct, allowing easy
// composition while maintaining clear interface boundaries.
//
// # Data Models
//
//   - User: Registered account with email, bcrypt hash, plan, active flag
//   - Settings: Singleton record with plan prices and external API keys
//   - AuditEntry: Who did what to which resource, with optional detail
//
// Plan prices are stored as decimal strings and exposed as
// shopspring/decimal values to avoid float drift.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Timestamps are stored as RFC3339 UTC strings.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested entity does not exist
//   - ErrEmailExists: Email is already registered
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewSQLiteStore with a t.TempDir() path, or ":memory:" for
// in-memory integration tests.
//
// # Migrations
//
// Additive column migrations run automatically on store initialization
// for databases created by earlier versions.
package store

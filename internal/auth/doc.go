// Package auth provides authentication and authorization for the trading backend.
//
// # Authentication
//
// Users authenticate with email and password. Passwords are hashed with
// bcrypt; a successful login yields a stateless JWT bearer token signed
// with HS256 using the configured jwt_secret. The secret must be at
// least MinSecretLength bytes.
//
// Tokens carry:
//   - sub: user ID (UUID)
//   - iat: issued-at
//   - exp: expiration
//
// There is no revocation list; a token is valid until it expires.
//
// # Request Context
//
// HTTPAuthMiddleware verifies the bearer token, loads the user, and
// attaches an AuthContext to the request context:
//
//	authCtx := auth.FromContext(r.Context())
//
// Unknown, deleted, and deactivated users are rejected with 401 even if
// their token is otherwise valid.
//
// # Authorization
//
// Plans are flat, not hierarchical: basic and premium gate nothing from
// each other, and only admin unlocks the administrative surface.
// RequireAdminHTTP enforces this after HTTPAuthMiddleware:
//
//	handler = auth.RequireAdminHTTP()(handler)
package auth

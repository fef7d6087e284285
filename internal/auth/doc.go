// Package auth provides bearer-token authentication for the MCP HTTP transport.
//
// # Tokens
//
// Clients authenticate with HS256-signed JWTs:
//
//	Authorization: Bearer <token>
//
// The "sub" claim names the caller and is attached to the request context.
// Tokens are minted with the configured http.jwt_secret, for example via
// `msu-mcp token --sub claude-desktop --ttl 720h`.
//
// # Middleware
//
// BearerMiddleware verifies the header on every request. When auth is
// required a missing or invalid token is rejected with 401; otherwise the
// request continues anonymously and only an invalid token is rejected.
//
// # Context
//
// Handlers read the caller with FromContext:
//
//	if p := auth.FromContext(r.Context()); p != nil {
//	    logger.Info("request", "principal", p.Subject)
//	}
//
// The stdio and NATS transports do not use this package: stdio is only
// reachable by the parent process, and NATS relies on server-side accounts.
package auth

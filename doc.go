// Package authkit implements the authentication core of the StorePOS
// backend: credential verification, JWT access-token issuance, and the
// refresh-token lifecycle (issue, rotate, revoke, revoke-all) with a
// persisted audit trail.
//
// The package is consumed by the API layer through three surfaces:
//
//   - Authenticator: login / refresh / logout / logout-all flows that
//     return a uniform AuthResult envelope.
//   - TokenService: HS256 access-token generation and validation, shared
//     with the bearer middleware so both sides agree on claims.
//   - RegisterAuthRoutes + RequireAuth: a Fiber controller and middleware
//     that expose the flows as JSON endpoints.
//
// Refresh tokens are stored through bun repositories; every mutation of a
// token lineage (rotation, revocation, pruning) commits as one transaction
// via RepositoryManager.RunInTx.
package authkit

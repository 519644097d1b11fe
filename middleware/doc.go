// Package middleware exposes HTTP guards for access tokens issued by
// goCred.Service.Login.
//
// # Guards
//
//   - [Guard] verifies the bearer token signature and claims only.
//   - [RequireRecord] also checks that the token subject still has a stored record.
//
// Both read the Authorization header and inject the verified claims into the
// request context, retrievable with [ClaimsFromContext].
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to the service).
//   - Read passwords or credential records beyond the existence check.
package middleware

// Package goCred stores password credentials as salted digests and checks
// candidates against them.
//
// A [CredentialRecord] holds a username, an email, the engine that produced its
// digest, a 6-character salt and the uppercase hex digest. SetPassword draws a
// fresh salt and recomputes the digest; Validate recomputes the digest of a
// candidate under the stored salt and compares. Engines live in the password
// package.
//
// [Service] adds persistence through a [store.Store], a Redis-backed failed-login
// throttle, engine upgrade on login, optional JWT access tokens, audit events
// and in-process metrics. Service methods are safe to call from multiple
// goroutines after [Builder.Build].
//
// # What this package must NOT do
//
//   - Put passwords, salts or digests in audit events, errors or log lines.
//   - Mutate a record on a failed SetPassword or on any Validate.
//   - Import any sub-package that re-imports goCred (no import cycles).
package goCred

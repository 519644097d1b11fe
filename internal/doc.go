// Package internal holds helpers private to goCred: salt generation from
// crypto/rand and the salt alphabet check.
//
// # Sub-packages
//
//   - rate: Redis-backed failed-login counters
//
// # What this package must NOT do
//
//   - Export types that appear in the public goCred API.
//   - Be imported by any package outside the goCred module.
package internal

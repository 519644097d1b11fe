// Package jwt issues and verifies short-lived access tokens for authenticated
// credential records. Tokens carry the username as subject, a random jti and
// the digest engine tag.
package jwt

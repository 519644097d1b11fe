// Package password implements the digest engines that turn a password and a salt into
// the hash stored on a credential record.
//
// # Engines
//
// Two engines ship with this package, selected by a [Kind] tag:
//
//   - [KeyedTransposition]: the keyboard-keyed substitution, bit diffusion and hex
//     encoding pipeline. Digests are bit-exact across implementations.
//   - [Argon2]: Argon2id key derivation over the same record salt.
//
// A [Registry] maps kinds to configured engines. Records resolve their engine through
// a registry instead of constructing engines themselves.
//
// # Architecture boundaries
//
// This package owns digest computation only. Salt generation, record state and
// persistence belong to the caller.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords: callers supply plaintext and a [Target].
//   - Import any other goCred package.
//   - Log plaintext passwords or digests.
package password

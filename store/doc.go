// Package store persists serialized credential records.
//
// # Representations
//
// [Record] has two encodings. The text block ([Record.MarshalText]) is the
// human-readable form used by [FileStore] and for logging:
//
//	username: alice
//	email: alice@example.com
//	password_hash: 6C0D960905E2C970F0B81C860F8380C170
//	salt: x!Y#1z
//	encryption_engine: keyed-transposition
//
// The binary form ([Encode], [Decode]) is a versioned, length-prefixed layout used by
// [RedisStore]. Neither is a versioned wire protocol for third parties.
//
// # Backends
//
//   - [FileStore]: flat file of text blocks, atomic whole-file rewrites.
//   - [RedisStore]: one key per username.
//   - [SQLiteStore]: a credentials table managed by embedded migrations.
//
// # What this package must NOT do
//
//   - Import goCred or password (no upward imports).
//   - Interpret salts, hashes or engine tags beyond carrying them.
//   - Retry or swallow I/O errors; they are returned to the caller.
package store

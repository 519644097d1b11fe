// Package rate implements the Redis fixed-window counter behind login throttling.
//
// # Window semantics
//
// INCR plus EXPIRE on the first hit. Keys are "<prefix>:fail:<username>". A
// username is limited once MaxAttempts failures land inside one Cooldown window.
//
// # What this package must NOT do
//
//   - Decide what counts as a failure. The service calls RecordFailure.
//   - Be imported outside the goCred module.
package rate

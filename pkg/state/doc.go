// Package state persists enumeration selections, one canonical-name record per
// scope reference, and resolves the effective selection across scope levels.
//
// Responsibilities:
//   - Store only loads and saves a single text record for a single Ref.
//   - Selector[T] turns records into enum.Value[T], accepting the legacy
//     underbar spelling on read and always writing the canonical name.
//   - Resolve returns the selection of the strongest level that has one
//     (user > team > org > tenant > system).
//
// Deterministic keys:
//
//	system/<domain>
//	<level>/<id>/<domain>
//
// Records written by older encoders are rewritten in canonical form the next
// time they pass through Mutate or Rewrite (read-old/write-new).
package state

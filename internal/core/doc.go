// Package core runs validation sessions and manages validation profiles.
//
// It sits between the transports (HTTP handlers, CLI) and the pure engine in
// package validation. A [Service] looks up a profile, decodes the uploaded
// file with package gridsource, runs the engine and records a history entry.
// It holds no transport types, so handlers, commands and tests share it.
//
// # Analysis Flow
//
//  1. [Service.Analyze] acquires a slot from the [AnalysisLimiter]
//  2. The profile is loaded from the [store.ProfileRepository]
//  3. The file is decoded under the configured size limit
//  4. The engine locates the header and evaluates the profile's rules
//  5. Results with data rows are added to the [store.HistoryRepository]
//
// A file that cannot be decoded is not an error of the call: Analyze returns
// a result with Success set to false and a user-facing message. Errors are
// reserved for requests that cannot be served (unknown profile, busy, timeout).
//
// # Profiles
//
// Profiles are edited through the Service so every change is validated and
// stamped with a new LastUpdated time. Rules are checked with
// [validation.ValidateDefinition] before they are saved; the engine itself is
// more lenient and skips rules it cannot run.
//
// # Error Handling
//
// Errors are mapped to user-facing messages with [MapError]. Each message
// carries a code for support reference:
//
//   - FILE001-FILE005: File errors (size, decode, format, missing, no header)
//   - PRF001-PRF002: Profile errors
//   - RUL001-RUL002: Rule errors
//   - UPL002-UPL005: Capacity, cancellation and timeouts
//   - RATE001: Request throttling
package core

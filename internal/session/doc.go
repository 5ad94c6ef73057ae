// Package session persists the storefront login on disk and decides whether
// it is still usable.
//
// Store is a small SQLite database (one file per profile) holding the bearer
// token, the authenticated user and the last cart snapshot the client saw.
// It is the CLI's replacement for browser storage: every command opens it,
// reads the credential and closes it again.
//
// Manager layers credential checks on top of Store:
//
//   - Credential returns the stored token only while it decodes and has not
//     expired. A stale token is deleted on the spot.
//   - Invalidate is the forced-logout side effect. It wipes the stored
//     session and hands the login URL (with the page to return to) to the
//     redirect hook.
//
// The schema is embedded (schema.sql) and upgraded in place through
// PRAGMA user_version.
package session

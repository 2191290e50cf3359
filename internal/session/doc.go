// Package session holds the authenticated identity and bearer credential
// for the current user and persists them as a single JSON slot on disk.
//
// The Store keeps user and token strictly paired: Set replaces both, Clear
// empties both, and clearing an already-empty session is a no-op so the
// explicit-logout and server-revocation paths can race safely. Persistence
// sits behind the narrow BlobStore interface; the file implementation locks
// writes so concurrent client processes do not interleave.
package session

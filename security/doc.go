// Package security provides the cipher and password collaborators used by
// codecs: an AES-GCM cipher keyed by Argon2id, a password helper that
// envelopes encrypted text and hashes with bcrypt, and the filter that picks
// out sensitive attribute names.
package security

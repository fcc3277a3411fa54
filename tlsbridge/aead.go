// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package tlsbridge

// AEAD protects and unprotects 1-RTT short-header packets once the
// handshake has produced traffic secrets. The connection engine never
// implements this itself; a collaborator derives one from the secrets
// handed back through HandshakeComplete and installs it on the
// connection. When no AEAD has been installed (e.g. in tests driven by
// a stand-in collaborator with no real cipher), short-header packets
// are left unprotected and Seal/Open are simply never called.
type AEAD interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
}

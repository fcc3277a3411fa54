// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
// Package faketls is a minimal stand-in for the external TLS
// collaborator that the connection's tlsbridge talks to. It performs no
// cryptography — the real handshake and AEAD are explicitly out of scope
// for this module — and exists only so tests can drive a Connection
// through a complete, deterministic handshake.
package faketls

import "github.com/hq05/mozquic-go/tlsbridge"

const (
	clientHello = "CLIENT_HELLO/hq-05"
	serverHello = "SERVER_HELLO/hq-05"
)

// Engine drives one side of a fake handshake over a tlsbridge.HandshakeIO.
type Engine struct {
	io       tlsbridge.HandshakeIO
	isClient bool
	sentHi   bool
	done     bool
}

// New creates a fake TLS engine for one side of a connection.
func New(io tlsbridge.HandshakeIO, isClient bool) *Engine {
	return &Engine{io: io, isClient: isClient}
}

// Advance implements tlsbridge.Engine: it pulls whatever stream-0 bytes
// have arrived and, if they complete the fake handshake's next step,
// pushes the following message or signals completion.
func (e *Engine) Advance() error {
	if e.done {
		return nil
	}
	buf := make([]byte, 256)
	n, err := e.io.PullHandshakeInput(buf)
	if err != nil {
		return err
	}
	input := string(buf[:n])

	if e.isClient {
		if !e.sentHi {
			e.io.HandshakeOutput([]byte(clientHello))
			e.sentHi = true
			return nil
		}
		if input == serverHello {
			e.complete()
		}
		return nil
	}

	if input == clientHello {
		e.io.HandshakeOutput([]byte(serverHello))
		e.complete()
	}
	return nil
}

func (e *Engine) complete() {
	e.done = true
	info := &tlsbridge.HandshakeInfo{Ciphersuite: tlsbridge.CiphersuiteAES128GCMSHA256}
	e.io.HandshakeComplete(tlsbridge.ErrNone, info)
}

// Done reports whether the fake handshake has finished.
func (e *Engine) Done() bool {
	return e.done
}

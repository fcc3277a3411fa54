// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

import "github.com/hq05/mozquic-go/tlsbridge"

// PullHandshakeInput implements tlsbridge.HandshakeIO: the external TLS
// collaborator calls this to pull bytes the peer has sent on stream 0.
func (c *Connection) PullHandshakeInput(buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := c.stream0.In.Read(buf)
	return n, nil
}

// HandshakeOutput implements tlsbridge.HandshakeIO: the collaborator
// calls this to hand the engine bytes that must go out on stream 0. They
// are queued on the reliability queue like any other stream-0 write and
// picked up by the next flush (StartClient's initial packet or IO).
func (c *Connection) HandshakeOutput(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.stream0.Out.Write(data, false)
}

// HandshakeComplete implements tlsbridge.HandshakeIO: the collaborator
// calls this exactly once to end the handshake, successfully or not.
func (c *Connection) HandshakeComplete(errCode tlsbridge.ErrCode, info *tlsbridge.HandshakeInfo) {
	c.mu.Lock()
	if errCode != tlsbridge.ErrNone {
		c.mu.Unlock()
		c.closeWithError(newProtocolError(ErrCrypto, "handshake failed"))
		return
	}
	c.handshakeInfo = info
	c.sendKeyPhase = tlsbridge.KeyPhase1RTT
	if c.role == roleClient {
		c.state = clientStateConnected
	} else {
		c.state = serverStateConnected
	}
	c.mu.Unlock()
	c.emit(EventConnected, nil)
}

// SetAEAD installs the 1-RTT packet-protection cipher the collaborator
// derived from HandshakeInfo's secrets. Until this is called, 1-RTT
// short-header packets are sent and accepted unprotected — acceptable
// for the stand-in collaborator used in tests, never for a real deployment.
func (c *Connection) SetAEAD(a tlsbridge.AEAD) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aead = a
}

// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

import "github.com/hq05/mozquic-go/wire"

// Close sends a CLOSE frame with the given application error code and
// reason, then transitions the connection to its closed state. Closing
// an already-closed connection returns a MisuseError and sends nothing.
func (c *Connection) Close(errorCode uint32, reason string) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return newMisuseError(ErrAlreadyFinished, "connection already closed")
	}

	c.mu.Lock()
	f := wire.Frame{Kind: wire.FrameClose, Close: &wire.CloseFrame{ErrorCode: errorCode, Reason: reason}}
	now := c.now()
	pkt, err := c.buildPacketLocked([]wire.Frame{f}, now)
	c.markClosedLocked(nil)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.transmit(pkt)
}

// closeWithError is called internally when the connection must close
// because of a protocol or crypto failure. The error, if any, is handed
// to the host through EventError before EventCloseConnection fires.
func (c *Connection) closeWithError(err error) {
	c.mu.Lock()
	c.markClosedLocked(err)
	c.mu.Unlock()
	if err != nil {
		c.emit(EventError, err)
	}
	c.emit(EventCloseConnection, nil)
}

func (c *Connection) markClosedLocked(err error) {
	if c.closed {
		return
	}
	c.closed = true
	c.closeErr = err
	if c.role == roleServerChild {
		c.state = serverStateClosed
	} else if c.role.isClient() {
		c.state = clientStateClosed
	} else {
		c.state = serverStateClosed
	}
}

func (r role) isClient() bool { return r == roleClient }

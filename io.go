// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

import (
	"net"
	"time"

	"github.com/hq05/mozquic-go/wire"
)

// maxDatagramsPerIntake bounds how many queued datagrams IO drains from
// the socket in a single call, so one connection can't starve the
// host's event loop.
const maxDatagramsPerIntake = 10

// IO drives one iteration of the connection's cooperative I/O loop:
// drain up to maxDatagramsPerIntake queued datagrams, advance the
// retransmit/give-up timer, then flush as many outgoing packets as are
// ready. Concurrent calls on the same connection do not overlap: each
// holds the connection's lock for its whole iteration. Setting
// Config.HandleIO makes this module call IO on a background goroutine.
func (c *Connection) IO() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()

	if c.role == roleServer {
		return c.serverIOLocked(now)
	}
	return c.clientIOLocked(now)
}

func (c *Connection) clientIOLocked(now int64) error {
	if !c.cfg.AppHandlesSendRecv {
		if err := c.intakeLocked(now); err != nil {
			c.emit(EventError, err)
		}
	}
	c.rq.Tick(now)
	return c.flushAllLocked(now)
}

func (c *Connection) serverIOLocked(now int64) error {
	if !c.cfg.AppHandlesSendRecv {
		if err := c.serverIntakeLocked(now); err != nil {
			c.emit(EventError, err)
		}
	}
	for _, child := range c.children {
		child.mu.Lock()
		child.rq.Tick(now)
		err := child.flushAllLocked(now)
		child.mu.Unlock()
		if err != nil {
			child.emit(EventError, err)
		}
	}
	return nil
}

// flushAllLocked keeps calling flushOnceLocked until there is nothing
// left to send, transmitting each packet as it is assembled.
func (c *Connection) flushAllLocked(now int64) error {
	for {
		pkt, sent, err := c.flushOnceLocked(now)
		if err != nil {
			return err
		}
		if !sent {
			return nil
		}
		if err := c.transmitLocked(pkt); err != nil {
			return err
		}
	}
}

func (c *Connection) intakeLocked(now int64) error {
	if c.pconn == nil {
		return nil
	}
	buf := make([]byte, wire.MTU+64)
	for i := 0; i < maxDatagramsPerIntake; i++ {
		_ = c.pconn.SetReadDeadline(time.Now())
		n, _, err := c.pconn.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil
			}
			return &IOError{Err: err}
		}
		pkt := append([]byte(nil), buf[:n]...)
		if err := c.processInboundLocked(pkt, now); err != nil {
			c.emit(EventError, err)
		}
	}
	return nil
}

func (c *Connection) serverIntakeLocked(now int64) error {
	if c.pconn == nil {
		return nil
	}
	buf := make([]byte, wire.MTU+64)
	for i := 0; i < maxDatagramsPerIntake; i++ {
		_ = c.pconn.SetReadDeadline(time.Now())
		n, addr, err := c.pconn.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil
			}
			return &IOError{Err: err}
		}
		udpAddr, ok := addr.(*net.UDPAddr)
		if !ok {
			continue
		}
		pkt := append([]byte(nil), buf[:n]...)
		if err := c.acceptOrRouteLocked(pkt, addrFromUDP(udpAddr), now); err != nil {
			c.emit(EventError, err)
		}
	}
	return nil
}

// FeedPacket hands a datagram received out-of-band (Config.AppHandlesSendRecv)
// to the connection in place of an internal socket read.
func (c *Connection) FeedPacket(pkt []byte, from Addr) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if c.role == roleServer {
		return c.acceptOrRouteLocked(pkt, from, now)
	}
	c.peer = from
	return c.processInboundLocked(pkt, now)
}

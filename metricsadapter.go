// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

import "fmt"

// The methods below satisfy metrics.Source, letting the host wrap a
// Connection in a metrics.ConnectionCollector without this package
// importing prometheus directly.

// ScoreboardDepth reports the number of coalesced ack ranges pending
// acknowledgement.
func (c *Connection) ScoreboardDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ack.Entries())
}

// UnackedLen reports how many chunks are in flight awaiting ack.
func (c *Connection) UnackedLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rq.UnackedLen()
}

// UnwrittenLen reports how many chunks are queued for their first or
// retransmitted send.
func (c *Connection) UnwrittenLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rq.UnwrittenLen()
}

// RetransmitCount reports the cumulative number of chunks cloned for
// retransmission.
func (c *Connection) RetransmitCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rq.RetransmitCount()
}

// ConnectionIDHex formats the connection ID for use as a metric label.
func (c *Connection) ConnectionIDHex() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("%x", c.connectionID)
}

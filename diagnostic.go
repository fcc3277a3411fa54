// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

import "github.com/hq05/mozquic-go/diag"

// Snapshot captures the connection's current bookkeeping for diagnostic
// serialization.
func (c *Connection) Snapshot() *diag.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &diag.Snapshot{
		ConnectionID:    c.connectionID,
		Version:         c.version,
		State:           c.state.String(),
		NextSendPN:      c.nextSendPN,
		ExpectedRecvPN:  c.expectedRecvPN,
		ScoreboardSize:  len(c.ack.Entries()),
		UnackedChunks:   c.rq.UnackedLen(),
		UnwrittenChunks: c.rq.UnwrittenLen(),
	}
	for id, p := range c.streams {
		s.Streams = append(s.Streams, diag.StreamSnapshot{
			StreamID:      id,
			InAbsorbed:    p.In.Absorbed(),
			InDone:        p.In.Done(),
			OutNextOffset: p.Out.NextOffset(),
			OutFinWritten: p.Out.Done(),
		})
	}
	return s
}

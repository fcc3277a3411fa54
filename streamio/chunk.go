// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
// Package streamio implements the per-stream in-order reassembly buffer
// and offset-assigning send queue (MozQuicStreamIn/MozQuicStreamOut in
// the original mozquic source).
package streamio

import "github.com/hq05/mozquic-go/tlsbridge"

// Chunk is an immutable span of stream bytes, plus the bookkeeping a
// chunk accumulates once it has been handed to the reliability queue for
// transmission.
type Chunk struct {
	StreamID uint32
	Offset   uint64
	Data     []byte
	Fin      bool

	// Set once the chunk has been transmitted at least once.
	PacketNumber     uint64
	TransmitTime     int64 // unix millis
	TransmitCount    uint16
	Retransmitted    bool
	TransmitKeyPhase tlsbridge.KeyPhase
}

// End returns the offset one past the last byte in the chunk.
func (c *Chunk) End() uint64 {
	return c.Offset + uint64(len(c.Data))
}

// Clone produces a fresh carrier chunk for retransmission: a new chunk
// with the same stream ID, offset, data, and fin bit, but no transmit
// history. The original chunk's data is not reused by reference beyond
// this copy so the two chunks never alias mutable state.
func (c *Chunk) Clone() *Chunk {
	data := make([]byte, len(c.Data))
	copy(data, c.Data)
	return &Chunk{
		StreamID: c.StreamID,
		Offset:   c.Offset,
		Data:     data,
		Fin:      c.Fin,
	}
}

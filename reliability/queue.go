// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
// Package reliability implements the two FIFO queues that carry a
// connection's unacknowledged and not-yet-sent stream chunks, plus the
// fixed-timeout retransmit/give-up timer.
package reliability

import "github.com/hq05/mozquic-go/streamio"

// RetransmitThresholdMillis and ForgetThresholdMillis are the fixed
// timeouts used instead of a congestion-controlled RTO estimator.
const (
	RetransmitThresholdMillis = 500
	ForgetThresholdMillis     = 4000
)

// Queue holds a connection's unwritten (candidates for the next outgoing
// packet) and unacked (sorted by transmitting packet number) chunks.
type Queue struct {
	unwritten []*streamio.Chunk
	unacked   []*streamio.Chunk

	retransmits uint64
}

// New creates an empty reliability queue.
func New() *Queue {
	return &Queue{}
}

// QueueForSend implements streamio.Writer: it appends a freshly written
// chunk to the back of the unwritten queue.
func (q *Queue) QueueForSend(c *streamio.Chunk) {
	q.unwritten = append(q.unwritten, c)
}

// Unwritten returns the chunks waiting to be placed into an outgoing
// packet. Callers must not retain the slice past the next mutation.
func (q *Queue) Unwritten() []*streamio.Chunk {
	return q.unwritten
}

// PopUnwritten removes and returns the first n chunks of the unwritten
// queue (n is clamped to the queue's length).
func (q *Queue) PopUnwritten(n int) []*streamio.Chunk {
	if n > len(q.unwritten) {
		n = len(q.unwritten)
	}
	out := q.unwritten[:n]
	q.unwritten = q.unwritten[n:]
	return out
}

// UnwrittenLen reports how many chunks are waiting to be sent for the
// first time or retransmitted.
func (q *Queue) UnwrittenLen() int {
	return len(q.unwritten)
}

// UnackedLen reports how many chunks are in flight, awaiting ack.
func (q *Queue) UnackedLen() int {
	return len(q.unacked)
}

// MarkTransmitted moves c from "about to be sent" bookkeeping into the
// unacked queue, stamping its packet number, transmit time, and key
// phase, sorted by packet number (packet numbers are assigned in
// increasing order, so appending preserves the sort).
func (q *Queue) MarkTransmitted(c *streamio.Chunk, packetNumber uint64, now int64) {
	c.PacketNumber = packetNumber
	c.TransmitTime = now
	c.TransmitCount++
	q.unacked = append(q.unacked, c)
}

// Ack removes every unacked chunk transmitted under packetNumber. A
// chunk already marked Retransmitted is simply dropped (its carrier was
// superseded); otherwise nothing further happens here. No per-stream
// completion is derived from this queue.
func (q *Queue) Ack(packetNumber uint64) {
	out := q.unacked[:0]
	for _, c := range q.unacked {
		if c.PacketNumber != packetNumber {
			out = append(out, c)
		}
	}
	q.unacked = out
}

// Tick runs the retransmit and give-up timers. It must be called on
// every I/O loop iteration. now is unix millis.
func (q *Queue) Tick(now int64) {
	kept := q.unacked[:0]
	for _, c := range q.unacked {
		age := now - c.TransmitTime
		if age >= ForgetThresholdMillis {
			continue // drop regardless of retransmitted state
		}
		if age >= RetransmitThresholdMillis && !c.Retransmitted {
			clone := c.Clone()
			clone.TransmitKeyPhase = c.TransmitKeyPhase
			c.Retransmitted = true
			q.unwritten = append(q.unwritten, clone)
			q.retransmits++
		}
		kept = append(kept, c)
	}
	q.unacked = kept
}

// RetransmitCount reports how many chunks have been cloned for
// retransmission since the queue was created.
func (q *Queue) RetransmitCount() uint64 {
	return q.retransmits
}

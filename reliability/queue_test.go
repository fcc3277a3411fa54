// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package reliability

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hq05/mozquic-go/streamio"
)

func TestQueueForSendThenPop(t *testing.T) {
	q := New()
	q.QueueForSend(&streamio.Chunk{Offset: 0, Data: []byte("a")})
	q.QueueForSend(&streamio.Chunk{Offset: 1, Data: []byte("b")})
	require.Equal(t, 2, q.UnwrittenLen())

	popped := q.PopUnwritten(1)
	require.Len(t, popped, 1)
	require.Equal(t, uint64(0), popped[0].Offset)
	require.Equal(t, 1, q.UnwrittenLen())
}

func TestMarkTransmittedAndAck(t *testing.T) {
	q := New()
	c := &streamio.Chunk{Offset: 0, Data: []byte("x")}
	q.MarkTransmitted(c, 7, 1000)
	require.Equal(t, 1, q.UnackedLen())
	require.Equal(t, uint64(7), c.PacketNumber)

	q.Ack(7)
	require.Equal(t, 0, q.UnackedLen())
}

func TestTickRetransmitsAfterThreshold(t *testing.T) {
	q := New()
	c := &streamio.Chunk{Offset: 0, Data: []byte("x")}
	q.MarkTransmitted(c, 1, 0)

	q.Tick(RetransmitThresholdMillis - 1)
	require.Equal(t, 0, q.UnwrittenLen())
	require.Equal(t, 1, q.UnackedLen())
	require.Equal(t, uint64(0), q.RetransmitCount())

	q.Tick(RetransmitThresholdMillis)
	require.Equal(t, 1, q.UnwrittenLen())
	require.Equal(t, 1, q.UnackedLen()) // original chunk stays unacked until acked or forgotten
	require.True(t, c.Retransmitted)
	require.Equal(t, uint64(1), q.RetransmitCount())

	// a second tick past threshold must not clone it again.
	q.Tick(RetransmitThresholdMillis + 10)
	require.Equal(t, uint64(1), q.RetransmitCount())
}

func TestTickForgetsAfterThreshold(t *testing.T) {
	q := New()
	c := &streamio.Chunk{Offset: 0, Data: []byte("x")}
	q.MarkTransmitted(c, 1, 0)

	q.Tick(ForgetThresholdMillis)
	require.Equal(t, 0, q.UnackedLen())
}

func TestAckDropsSupersededRetransmit(t *testing.T) {
	q := New()
	c := &streamio.Chunk{Offset: 0, Data: []byte("x")}
	q.MarkTransmitted(c, 1, 0)
	q.Tick(RetransmitThresholdMillis)
	require.Equal(t, 1, q.UnwrittenLen())

	clone := q.PopUnwritten(1)[0]
	q.MarkTransmitted(clone, 2, RetransmitThresholdMillis)
	require.Equal(t, 2, q.UnackedLen())

	q.Ack(2)
	require.Equal(t, 1, q.UnackedLen()) // original carrier (pn 1) still present until it is separately acked or forgotten
}

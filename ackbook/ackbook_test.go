// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package ackbook

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hq05/mozquic-go/tlsbridge"
	"github.com/hq05/mozquic-go/wire"
)

func TestRecordCoalescesAscendingRun(t *testing.T) {
	s := New()
	s.Record(1, tlsbridge.KeyPhaseUnprotected, 100)
	s.Record(2, tlsbridge.KeyPhaseUnprotected, 101)
	s.Record(3, tlsbridge.KeyPhaseUnprotected, 102)

	require.Len(t, s.Entries(), 1)
	e := s.Entries()[0]
	require.Equal(t, uint64(3), e.PacketNumber)
	require.Equal(t, uint64(1), e.Low())
}

func TestRecordBridgesTwoEntries(t *testing.T) {
	s := New()
	s.Record(1, tlsbridge.KeyPhaseUnprotected, 100)
	s.Record(3, tlsbridge.KeyPhaseUnprotected, 102) // gap at 2
	require.Len(t, s.Entries(), 2)

	s.Record(2, tlsbridge.KeyPhaseUnprotected, 101) // bridges 1 and 3
	require.Len(t, s.Entries(), 1)
	e := s.Entries()[0]
	require.Equal(t, uint64(3), e.PacketNumber)
	require.Equal(t, uint64(1), e.Low())
}

func TestRecordDropsDuplicate(t *testing.T) {
	s := New()
	s.Record(5, tlsbridge.KeyPhaseUnprotected, 0)
	s.Record(5, tlsbridge.KeyPhaseUnprotected, 10)
	require.Len(t, s.Entries(), 1)
	require.Len(t, s.Entries()[0].ReceiveTimes, 1)
}

func TestAckPiggyBackRecordsTransmit(t *testing.T) {
	s := New()
	s.Record(10, tlsbridge.KeyPhaseUnprotected, 0)

	buf, used := s.AckPiggyBack(nil, 1200, 99, 50)
	require.Greater(t, used, 0)
	require.Equal(t, used, len(buf))
	require.True(t, s.Entries()[0].Transmitted())
}

func TestAckPiggyBackRespectsBudget(t *testing.T) {
	s := New()
	s.Record(10, tlsbridge.KeyPhaseUnprotected, 0)
	_, used := s.AckPiggyBack(nil, 0, 99, 50)
	require.Equal(t, 0, used)
	require.False(t, s.Entries()[0].Transmitted())
}

func TestProcessAckRetiresByTransmit(t *testing.T) {
	s := New()
	s.Record(10, tlsbridge.KeyPhaseUnprotected, 0)
	s.AckPiggyBack(nil, 1200, 200, 0) // entry for pn 10 rides carrier packet 200

	var acked []uint64
	f := wire.AckFrame{LargestAcked: 200, FirstAckBlockLength: 0}
	s.ProcessAck(f, func(n uint64) { acked = append(acked, n) })

	require.Equal(t, []uint64{200}, acked)
	require.Empty(t, s.Entries())
}

func TestAckedPacketNumbersExpandsRangesAndBlocks(t *testing.T) {
	f := wire.AckFrame{
		LargestAcked:        10,
		FirstAckBlockLength: 2, // 10, 9, 8
		Blocks: []wire.AckBlock{
			{Gap: 0, Length: 1}, // step down gap+1=1 (nothing skipped) then cover 2
		},
	}
	got := ackedPacketNumbers(f)
	require.Equal(t, []uint64{10, 9, 8, 7, 6}, got)
}

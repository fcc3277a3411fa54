// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
// Package ackbook implements the ack scoreboard: the set of received
// packet numbers pending acknowledgement, stored as coalesced ranges,
// plus emission of ACK frames and pruning on receipt of the peer's ACKs.
package ackbook

import (
	"sort"

	"github.com/hq05/mozquic-go/tlsbridge"
	"github.com/hq05/mozquic-go/wire"
)

// Transmit records one occasion an entry was placed on the wire: the
// packet number that carried it, and when.
type Transmit struct {
	PacketNumber uint64
	Time         int64
}

// Entry describes a contiguous range of received packet numbers
// {PacketNumber, PacketNumber-1, ..., PacketNumber-Extra}.
type Entry struct {
	PacketNumber uint64
	Extra        uint64
	Phase        tlsbridge.KeyPhase

	// ReceiveTimes is ordered head-first (index 0 corresponds to
	// PacketNumber).
	ReceiveTimes []int64

	Transmits []Transmit
}

// Low returns the lowest packet number this entry covers.
func (e *Entry) Low() uint64 {
	return e.PacketNumber - e.Extra
}

// Covers reports whether n falls within this entry's range.
func (e *Entry) Covers(n uint64) bool {
	return n <= e.PacketNumber && n >= e.Low()
}

// Transmitted reports whether this entry has ever been placed on the
// wire.
func (e *Entry) Transmitted() bool {
	return len(e.Transmits) > 0
}

// Scoreboard is the full set of pending ack entries, ordered with the
// highest packet number first.
type Scoreboard struct {
	entries []*Entry
}

// New creates an empty scoreboard.
func New() *Scoreboard {
	return &Scoreboard{}
}

// Record processes receipt of packet number n under key phase kp at time
// t (unix millis), merging it into the scoreboard's coalesced ranges.
func (s *Scoreboard) Record(n uint64, kp tlsbridge.KeyPhase, t int64) {
	for _, e := range s.entries {
		if e.Covers(n) {
			return // duplicate, drop silently
		}
	}

	var extendDown, extendUp *Entry
	for _, e := range s.entries {
		if e.Low() == n+1 {
			extendDown = e
		}
		if e.PacketNumber+1 == n {
			extendUp = e
		}
	}

	switch {
	case extendDown != nil && extendUp != nil:
		// n bridges two entries: extendDown's low end is n+1 (it covers
		// the range above n) and extendUp's head is n-1 (it covers the
		// range below n). Coalesce into extendDown, whose PacketNumber is
		// already the correct, higher head; extendUp is absorbed and
		// removed.
		extendDown.Extra = extendDown.PacketNumber - extendUp.Low()
		extendDown.ReceiveTimes = append(extendDown.ReceiveTimes, t)
		extendDown.ReceiveTimes = append(extendDown.ReceiveTimes, extendUp.ReceiveTimes...)
		extendDown.Transmits = append(extendDown.Transmits, extendUp.Transmits...)
		s.remove(extendUp)
	case extendDown != nil:
		extendDown.Extra++
	case extendUp != nil:
		extendUp.PacketNumber = n
		extendUp.Extra++
		extendUp.ReceiveTimes = append([]int64{t}, extendUp.ReceiveTimes...)
	default:
		e := &Entry{PacketNumber: n, Phase: kp, ReceiveTimes: []int64{t}}
		s.insert(e)
	}
}

func (s *Scoreboard) insert(e *Entry) {
	i := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].PacketNumber <= e.PacketNumber
	})
	s.entries = append(s.entries, nil)
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e
}

func (s *Scoreboard) remove(target *Entry) {
	for i, e := range s.entries {
		if e == target {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// Entries returns the scoreboard's entries, highest packet number first.
// Callers must not mutate the returned slice.
func (s *Scoreboard) Entries() []*Entry {
	return s.entries
}

// AckPiggyBack writes as many ACK frames as fit within avail bytes into
// buf, largest-packet-number first, and records that carrierPN carried
// each entry actually placed. It returns the extended buffer and the
// number of bytes appended.
func (s *Scoreboard) AckPiggyBack(buf []byte, avail int, carrierPN uint64, now int64) ([]byte, int) {
	used := 0
	for _, e := range s.entries {
		f := wire.AckFrame{
			LargestAcked:        e.PacketNumber,
			AckDelay:            uint16(nowDelay(e, now)),
			FirstAckBlockLength: e.Extra,
		}
		candidate := wire.EncodeAckFrame(nil, f)
		if used+len(candidate) > avail {
			continue
		}
		buf = append(buf, candidate...)
		used += len(candidate)
		e.Transmits = append(e.Transmits, Transmit{PacketNumber: carrierPN, Time: now})
	}
	return buf, used
}

func nowDelay(e *Entry, now int64) int64 {
	if len(e.ReceiveTimes) == 0 {
		return 0
	}
	d := now - e.ReceiveTimes[0]
	if d < 0 {
		return 0
	}
	if d > 0xFFFF {
		return 0xFFFF
	}
	return d
}

// ProcessAck applies an incoming ACK frame: every packet number it
// reports acknowledged is passed to ackedChunk (which the reliability
// queue uses to retire unacked chunks), and any scoreboard entry whose
// Transmits includes an acked packet number is retired (transitive
// ack-of-ack pruning).
func (s *Scoreboard) ProcessAck(f wire.AckFrame, ackedChunk func(packetNumber uint64)) {
	for _, n := range ackedPacketNumbers(f) {
		ackedChunk(n)
		s.retireByTransmit(n)
	}
}

// ackedPacketNumbers expands an ACK frame's ranges into the full set of
// acknowledged packet numbers.
func ackedPacketNumbers(f wire.AckFrame) []uint64 {
	var out []uint64
	largest := f.LargestAcked
	for i := uint64(0); i <= f.FirstAckBlockLength; i++ {
		out = append(out, largest-i)
	}
	cursor := largest - f.FirstAckBlockLength
	for _, b := range f.Blocks {
		cursor -= uint64(b.Gap) + 1
		for i := uint64(0); i <= b.Length; i++ {
			out = append(out, cursor-i)
		}
		cursor -= b.Length
	}
	return out
}

func (s *Scoreboard) retireByTransmit(n uint64) {
	for i := 0; i < len(s.entries); i++ {
		e := s.entries[i]
		for _, tx := range e.Transmits {
			if tx.PacketNumber == n {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				i--
				break
			}
		}
	}
}

// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

import (
	"encoding/binary"
	"fmt"

	"github.com/hq05/mozquic-go/ackbook"
	"github.com/hq05/mozquic-go/reliability"
	"github.com/hq05/mozquic-go/streamio"
	"github.com/hq05/mozquic-go/wire"
)

// peekConnectionID extracts the connection ID from a packet without
// fully decoding it, for the server's demux lookup. It returns ok=false
// for a short-header packet with no connection ID,
// which this module cannot route and drops.
func peekConnectionID(pkt []byte) (uint64, bool) {
	if len(pkt) < 1 {
		return 0, false
	}
	if wire.IsLongHeader(pkt[0]) {
		if len(pkt) < 9 {
			return 0, false
		}
		return binary.BigEndian.Uint64(pkt[1:9]), true
	}
	if pkt[0]&0x40 == 0 {
		return 0, false
	}
	if len(pkt) < 9 {
		return 0, false
	}
	return binary.BigEndian.Uint64(pkt[1:9]), true
}

// acceptOrRouteLocked demultiplexes an inbound datagram received on the
// server's shared socket: route it to an existing child by connection
// ID, or (for a well-formed CLIENT_INITIAL) accept a new one. Duplicate
// CLIENT_INITIAL datagrams for an already-accepted connection ID are
// routed to the existing child rather than spawning a second one.
func (c *Connection) acceptOrRouteLocked(pkt []byte, from Addr, now int64) error {
	c.sweepRecentClientIDsLocked(now)

	cid, ok := peekConnectionID(pkt)
	if !ok {
		return nil
	}

	if child, exists := c.children[cid]; exists {
		return c.routeToChildLocked(child, pkt, from, now)
	}

	if !wire.IsLongHeader(pkt[0]) {
		return nil // unknown connection ID on a short-header packet: drop
	}
	hdr, _, err := wire.DecodeLongHeader(pkt)
	if err != nil || hdr.Type != wire.PacketTypeClientInitial {
		return nil
	}
	if len(pkt) < wire.MinClientInitial {
		return newProtocolError(ErrInvalid, "CLIENT_INITIAL shorter than minimum padded size")
	}

	if c.dedupFilter.maybeSeen(cid) {
		if entry, exists := c.recentClientIDs[cid]; exists {
			return c.routeToChildLocked(entry.child, pkt, from, now)
		}
	}

	if !c.cfg.versionSupported(hdr.Version) {
		return c.sendVersionNegotiationLocked(cid, from)
	}

	child := c.newChildLocked(cid, from, now)
	c.children[cid] = child
	c.dedupFilter.add(cid)
	c.recentClientIDs[cid] = recentClientEntry{child: child, firstSeen: now}

	child.mu.Lock()
	err = child.processInboundLocked(pkt, now)
	child.mu.Unlock()

	// Release c.mu (the server's own lock) before emitting, so a host
	// that calls back into the server or the newly accepted child from
	// its EventAcceptNewConnection handler does not deadlock.
	c.mu.Unlock()
	c.emit(EventAcceptNewConnection, child)
	c.mu.Lock()
	return err
}

func (c *Connection) routeToChildLocked(child *Connection, pkt []byte, from Addr, now int64) error {
	child.mu.Lock()
	defer child.mu.Unlock()
	child.peer = from
	return child.processInboundLocked(pkt, now)
}

func (c *Connection) newChildLocked(cid uint64, from Addr, now int64) *Connection {
	child := &Connection{
		role:         roleServerChild,
		state:        serverState0RTT,
		version:      c.version,
		cfg:          c.cfg,
		parent:       c,
		peer:         from,
		connectionID: cid,
		streams:      make(map[uint32]*streamio.Pair),
		ack:          ackbook.New(),
		rq:           reliability.New(),
		eventHandler: c.eventHandler,
		createdAt:    now,
		nextStreamID: 2,
		log:          c.log.With("conn", fmt.Sprintf("%x", cid)),
	}
	child.stream0 = streamio.NewPair(0, child.rq)
	return child
}

// sweepRecentClientIDsLocked drops dedup bookkeeping for connections
// whose first CLIENT_INITIAL arrived more than
// reliability.ForgetThresholdMillis ago. The bloom
// pre-filter is never swept; its false positives just fall through to
// this now-smaller map.
func (c *Connection) sweepRecentClientIDsLocked(now int64) {
	for cid, entry := range c.recentClientIDs {
		if now-entry.firstSeen >= reliability.ForgetThresholdMillis {
			delete(c.recentClientIDs, cid)
		}
	}
}

// sendVersionNegotiationLocked replies to an unsupported-version
// CLIENT_INITIAL with the server's supported version list.
func (c *Connection) sendVersionNegotiationLocked(cid uint64, peer Addr) error {
	header := wire.EncodeLongHeader(nil, wire.LongHeader{
		Type:         wire.PacketTypeVersionNegotiation,
		ConnectionID: cid,
		PacketNumber: 0,
		Version:      0,
	})
	for _, v := range c.cfg.SupportedVersions {
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], v)
		header = append(header, tmp[:]...)
	}
	pkt := wire.AppendCleartextTag(header)
	if c.cfg.AppHandlesSendRecv {
		c.emit(EventTransmit, &TransmitPayload{Packet: pkt, Peer: &peer})
		return nil
	}
	if c.pconn == nil {
		return nil
	}
	_, err := c.pconn.WriteTo(pkt, peer.toUDP())
	if err != nil {
		return &IOError{Err: err}
	}
	return nil
}

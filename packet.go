// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

import (
	"github.com/hq05/mozquic-go/streamio"
	"github.com/hq05/mozquic-go/tlsbridge"
	"github.com/hq05/mozquic-go/wire"
)

// isHandshaking reports whether the connection is still exchanging
// cleartext (long-header) packets.
func (c *Connection) isHandshaking() bool {
	switch c.state {
	case clientState0RTT, clientState1RTT, serverState0RTT, serverState1RTT, serverStateListen:
		return true
	default:
		return false
	}
}

func (c *Connection) longHeaderTypeLocked() wire.LongHeaderType {
	if c.role == roleClient {
		if !c.sentInitial {
			return wire.PacketTypeClientInitial
		}
		return wire.PacketTypeClientCleartext
	}
	return wire.PacketTypeServerCleartext
}

// sendClientInitialLocked emits the first CLIENT_INITIAL datagram. Any
// stream-0 bytes already queued via HandshakeOutput ride along in it.
func (c *Connection) sendClientInitialLocked() error {
	now := c.now()
	pkt, _, err := c.flushOnceLocked(now)
	if err != nil {
		return err
	}
	if pkt == nil {
		// Nothing queued yet (the host hasn't produced a ClientHello):
		// still emit a padded, empty CLIENT_INITIAL so the server sees
		// the connection attempt.
		pkt, err = c.buildPacketLocked(nil, now)
		if err != nil {
			return err
		}
	}
	return c.transmitLocked(pkt)
}

// buildPacketLocked assembles one packet carrying piggybacked acks plus
// extra (non-stream) frames, with no stream data. It is used for
// control-only packets like CLOSE.
func (c *Connection) buildPacketLocked(extra []wire.Frame, now int64) ([]byte, error) {
	return c.assemblePacketLocked(nil, extra, now)
}

// flushOnceLocked assembles at most one packet's worth of queued stream
// data plus piggybacked acks; the caller transmits it. It reports
// sent=false when there was nothing to send: no unwritten chunks and no
// ack entry that has never been placed on the wire.
func (c *Connection) flushOnceLocked(now int64) (pkt []byte, sent bool, err error) {
	pendingAck := false
	for _, e := range c.ack.Entries() {
		if !e.Transmitted() {
			pendingAck = true
			break
		}
	}
	if c.rq.UnwrittenLen() == 0 && !pendingAck {
		return nil, false, nil
	}
	headerLen := c.estimateHeaderLenLocked()
	budget := wire.MTU - headerLen
	chunks := c.popChunksForPacketLocked(budget / 2) // leave room for acks
	if len(chunks) == 0 && !pendingAck {
		return nil, false, nil
	}
	pkt, err = c.assemblePacketLocked(chunks, nil, now)
	return pkt, true, err
}

func (c *Connection) estimateHeaderLenLocked() int {
	if c.isHandshaking() {
		return wire.LongHeaderLen
	}
	return 1 + 8 + shortHeaderPNWidth(c.nextSendPN)
}

func shortHeaderPNWidth(pn uint64) int {
	switch {
	case pn < 1<<8:
		return 1
	case pn < 1<<16:
		return 2
	default:
		return 4
	}
}

// popChunksForPacketLocked pops chunks off the reliability queue in
// order until budget bytes of estimated STREAM-frame encoding would be
// exceeded. The head chunk is always taken even if it alone exceeds
// budget, to guarantee forward progress on oversized payloads. Because
// stream 0 is always written first during the handshake bootstrap, queue
// order already puts it ahead of any application stream's chunks.
func (c *Connection) popChunksForPacketLocked(budget int) []*streamio.Chunk {
	var out []*streamio.Chunk
	used := 0
	for c.rq.UnwrittenLen() > 0 {
		head := c.rq.Unwritten()[0]
		// conservative per-frame overhead estimate: 1 (type) + 4 (stream
		// id) + 8 (offset) + 2 (len) + payload.
		estimate := 15 + len(head.Data)
		if len(out) > 0 && used+estimate > budget {
			break
		}
		out = append(out, c.rq.PopUnwritten(1)[0])
		used += estimate
	}
	return out
}

// assemblePacketLocked builds one packet from the given stream chunks
// (already popped from the reliability queue) and extra control frames,
// applies cleartext padding/tagging or AEAD protection as appropriate,
// and records each chunk's transmission.
func (c *Connection) assemblePacketLocked(chunks []*streamio.Chunk, extra []wire.Frame, now int64) ([]byte, error) {
	pn := c.nextSendPN
	c.nextSendPN++

	cleartext := c.isHandshaking()
	var header []byte
	if cleartext {
		header = wire.EncodeLongHeader(nil, wire.LongHeader{
			Type:         c.longHeaderTypeLocked(),
			ConnectionID: c.connectionID,
			PacketNumber: uint32(pn),
			Version:      c.version,
		})
		c.sentInitial = true
	} else {
		var err error
		header, err = wire.EncodeShortHeader(nil, wire.ShortHeader{
			ConnectionIDPresent: true,
			ConnectionID:        c.connectionID,
			PNWidth:             shortHeaderPNWidth(pn),
			PacketNumber:        pn,
		})
		if err != nil {
			return nil, &IOError{Err: err}
		}
	}

	avail := wire.MTU - len(header)
	var payload []byte
	payload, used := c.ack.AckPiggyBack(payload, avail, pn, now)
	avail -= used

	for _, f := range extra {
		b, err := wire.EncodeFixedFrame(nil, f)
		if err != nil {
			return nil, &ProtocolError{Code: ErrInvalid, Err: err}
		}
		payload = append(payload, b...)
	}

	// A client cleartext packet may be padded below, so its last STREAM
	// frame carries an explicit length instead of running to the end.
	padded := cleartext && c.role == roleClient
	for i, chunk := range chunks {
		runToEnd := i == len(chunks)-1 && !padded
		payload = wire.EncodeStreamFrame(payload, wire.StreamFrame{
			StreamID: chunk.StreamID,
			Offset:   chunk.Offset,
			Fin:      chunk.Fin,
			Data:     chunk.Data,
		}, runToEnd)
	}

	pkt := append(header, payload...)

	if cleartext {
		if len(pkt)+wire.CleartextTagLen < wire.MinClientInitial && c.role == roleClient {
			pad := make([]byte, wire.MinClientInitial-wire.CleartextTagLen-len(pkt))
			pkt = append(pkt, pad...) // zero bytes decode as PADDING frames
		}
		pkt = wire.AppendCleartextTag(pkt)
	} else if c.aead != nil {
		nonce := nonceFromPacketNumber(pn)
		pkt = c.aead.Seal(header, nonce, pkt[len(header):], header)
	}

	for _, chunk := range chunks {
		chunk.TransmitKeyPhase = c.sendKeyPhase
		c.rq.MarkTransmitted(chunk, pn, now)
	}

	return pkt, nil
}

func nonceFromPacketNumber(pn uint64) []byte {
	var nonce [12]byte
	for i := 0; i < 8; i++ {
		nonce[11-i] = byte(pn >> (8 * i))
	}
	return nonce[:]
}

// transmit sends pkt to the connection's current peer, through the
// socket (or through EventTransmit when the host owns the socket).
func (c *Connection) transmit(pkt []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transmitLocked(pkt)
}

func (c *Connection) transmitLocked(pkt []byte) error {
	if c.cfg.AppHandlesSendRecv {
		peer := c.peer
		c.emit(EventTransmit, &TransmitPayload{Packet: pkt, Peer: &peer})
		return nil
	}
	owner := c
	if c.role == roleServerChild {
		owner = c.parent
	}
	if owner.pconn == nil {
		return nil
	}
	_, err := owner.pconn.WriteTo(pkt, c.peer.toUDP())
	if err != nil {
		return &IOError{Err: err}
	}
	return nil
}

// recordReceivedPacket folds a successfully decoded packet's number into
// the ack scoreboard.
func (c *Connection) recordReceivedPacket(pn uint64, phase tlsbridge.KeyPhase, now int64) {
	c.ack.Record(pn, phase, now)
	c.pingDeadline = 0 // the peer is alive; CheckPeer's deadline is met
	if pn+1 > c.expectedRecvPN {
		c.expectedRecvPN = pn + 1
	}
}

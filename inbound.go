// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

import (
	"encoding/binary"

	"github.com/hq05/mozquic-go/streamio"
	"github.com/hq05/mozquic-go/tlsbridge"
	"github.com/hq05/mozquic-go/wire"
)

// processInboundLocked decodes one datagram already known to belong to
// this connection and dispatches its frames. The packet's source address
// is handled by the caller; this function does not see it.
func (c *Connection) processInboundLocked(pkt []byte, now int64) error {
	if wire.IsLongHeader(pkt[0]) {
		return c.processLongHeaderLocked(pkt, now)
	}
	return c.processShortHeaderLocked(pkt, now)
}

func (c *Connection) processLongHeaderLocked(pkt []byte, now int64) error {
	hdr, n, err := wire.DecodeLongHeader(pkt)
	if err != nil {
		return newProtocolError(ErrInvalid, "long header: %v", err)
	}

	switch hdr.Type {
	case wire.PacketTypeVersionNegotiation:
		return c.handleVersionNegotiationLocked(pkt[n:])
	case wire.PacketTypeServerStatelessRetry, wire.PacketTypePublicReset:
		// Decodable but intentionally not acted on (resolved open
		// question: no stateless-retry or public-reset handling in this
		// module).
		return nil
	}

	body, ok := wire.CheckCleartextTag(pkt)
	if !ok {
		return newProtocolError(ErrInvalid, "bad cleartext integrity tag")
	}
	frames := body[n:]

	c.recordReceivedPacket(uint64(hdr.PacketNumber), tlsbridge.KeyPhaseUnprotected, now)
	return c.processFramesLocked(frames, now)
}

func (c *Connection) processShortHeaderLocked(pkt []byte, now int64) error {
	raw := pkt
	if c.aead != nil {
		hdr0, n0, err := wire.DecodeShortHeader(pkt)
		if err != nil {
			return newProtocolError(ErrInvalid, "short header: %v", err)
		}
		pn := wire.DecompressPacketNumber(hdr0.PacketNumber, hdr0.PNWidth, c.expectedRecvPN)
		nonce := nonceFromPacketNumber(pn)
		opened, err := c.aead.Open(nil, nonce, pkt[n0:], pkt[:n0])
		if err != nil {
			return &CryptoError{Err: err}
		}
		raw = append(append([]byte(nil), pkt[:n0]...), opened...)
	}

	hdr, n, err := wire.DecodeShortHeader(raw)
	if err != nil {
		return newProtocolError(ErrInvalid, "short header: %v", err)
	}
	pn := wire.DecompressPacketNumber(hdr.PacketNumber, hdr.PNWidth, c.expectedRecvPN)
	c.recordReceivedPacket(pn, c.sendKeyPhase, now)
	return c.processFramesLocked(raw[n:], now)
}

func (c *Connection) handleVersionNegotiationLocked(versions []byte) error {
	if c.role != roleClient || c.state != clientState0RTT {
		return nil
	}
	for i := 0; i+4 <= len(versions); i += 4 {
		v := binary.BigEndian.Uint32(versions[i : i+4])
		if c.cfg.versionSupported(v) {
			c.version = v
			c.sentInitial = false
			c.nextSendPN = 0
			return c.sendClientInitialLocked()
		}
	}
	return newProtocolError(ErrVersion, "no mutually supported version")
}

func (c *Connection) processFramesLocked(buf []byte, now int64) error {
	for len(buf) > 0 {
		f, n, err := wire.DecodeFrame(buf)
		if err != nil {
			return newProtocolError(ErrInvalid, "frame decode: %v", err)
		}
		buf = buf[n:]

		switch f.Kind {
		case wire.FramePadding, wire.FramePing, wire.FrameBlocked, wire.FrameStreamIDNeeded,
			wire.FrameMaxData, wire.FrameMaxStreamData, wire.FrameMaxStreamID,
			wire.FrameStreamBlocked, wire.FrameNewConnectionID, wire.FrameGoaway:
			// No flow-control enforcement or connection migration in this
			// module; these are accepted and otherwise ignored.
		case wire.FrameAck:
			c.ack.ProcessAck(*f.Ack, c.rq.Ack)
		case wire.FrameStream:
			c.deliverStreamFrameLocked(f.Stream, now)
		case wire.FrameRstStream:
			c.deliverResetLocked(f.RstStream)
		case wire.FrameClose:
			c.mu.Unlock()
			c.closeWithError(newProtocolError(ErrCode(f.Close.ErrorCode), "peer closed: %s", f.Close.Reason))
			c.mu.Lock()
			return nil
		}
	}
	return nil
}

// deliverStreamFrameLocked releases c.mu around the event it emits, so a
// host that calls back into the connection (e.g. Read or
// PullHandshakeInput) from its EventNewStreamData/EventTLSInput handler
// does not deadlock on c's non-reentrant mutex.
func (c *Connection) deliverStreamFrameLocked(f *wire.StreamFrame, now int64) {
	p := c.streamPairLocked(f.StreamID)
	chunk := &streamio.Chunk{StreamID: f.StreamID, Offset: f.Offset, Data: f.Data, Fin: f.Fin}
	if err := p.In.Supply(chunk); err != nil {
		return
	}
	if f.StreamID == 0 {
		c.mu.Unlock()
		c.emit(EventTLSInput, &TLSInputPayload{Data: f.Data})
		c.mu.Lock()
		return
	}
	c.mu.Unlock()
	c.emit(EventNewStreamData, f.StreamID)
	c.mu.Lock()
}

func (c *Connection) deliverResetLocked(f *wire.RstStreamFrame) {
	delete(c.streams, f.StreamID)
	c.mu.Unlock()
	c.emit(EventStreamReset, &StreamResetPayload{
		StreamID:    f.StreamID,
		ErrorCode:   f.ErrorCode,
		FinalOffset: f.FinalOffset,
	})
	c.mu.Lock()
}

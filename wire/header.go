// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package wire

import "encoding/binary"

// LongHeader is the decoded form of a long-header packet: version
// negotiation and every cleartext/0-RTT/1-RTT-key-phase packet exchanged
// before the connection settles into short-header post-handshake packets.
type LongHeader struct {
	Type           LongHeaderType
	ConnectionID   uint64
	PacketNumber   uint32 // always transmitted at full width on the wire
	Version        uint32
}

// LongHeaderLen is the fixed size of an encoded long header.
const LongHeaderLen = 1 + 8 + 4 + 4

// EncodeLongHeader appends the wire form of h to buf and returns the
// extended slice.
func EncodeLongHeader(buf []byte, h LongHeader) []byte {
	var tmp [LongHeaderLen]byte
	tmp[0] = longHeaderFlag | byte(h.Type)
	binary.BigEndian.PutUint64(tmp[1:9], h.ConnectionID)
	binary.BigEndian.PutUint32(tmp[9:13], h.PacketNumber)
	binary.BigEndian.PutUint32(tmp[13:17], h.Version)
	return append(buf, tmp[:]...)
}

// DecodeLongHeader parses a long header from the front of pkt, returning
// the decoded header and the number of bytes consumed.
func DecodeLongHeader(pkt []byte) (LongHeader, int, error) {
	if len(pkt) < LongHeaderLen {
		return LongHeader{}, 0, ErrShortPacket
	}
	if !IsLongHeader(pkt[0]) {
		return LongHeader{}, 0, ErrNotLongForm
	}
	h := LongHeader{
		Type:         LongHeaderType(pkt[0] &^ longHeaderFlag),
		ConnectionID: binary.BigEndian.Uint64(pkt[1:9]),
		PacketNumber: binary.BigEndian.Uint32(pkt[9:13]),
		Version:      binary.BigEndian.Uint32(pkt[13:17]),
	}
	return h, LongHeaderLen, nil
}

// ShortHeader is the decoded form of a post-handshake, 1-RTT protected
// packet: an optional connection ID followed by a compressed packet
// number of width 1, 2, or 4 bytes.
type ShortHeader struct {
	ConnectionIDPresent bool
	ConnectionID        uint64
	PNWidth             int // 1, 2, or 4
	PacketNumber        uint64
}

// pnWidthToCode maps a packet-number width in bytes to its 2-bit wire
// code; pnCodeToWidth maps it back.
var pnWidthToCode = map[int]byte{1: 0, 2: 1, 4: 2}
var pnCodeToWidth = map[byte]int{0: 1, 1: 2, 2: 4}

// EncodeShortHeader appends the wire form of h, compressing PacketNumber
// to h.PNWidth bytes, to buf.
func EncodeShortHeader(buf []byte, h ShortHeader) ([]byte, error) {
	code, ok := pnWidthToCode[h.PNWidth]
	if !ok {
		return nil, ErrBadPNWidth
	}
	var typ byte
	if h.ConnectionIDPresent {
		typ |= 0x40
	}
	typ |= code
	buf = append(buf, typ)
	if h.ConnectionIDPresent {
		var cidBuf [8]byte
		binary.BigEndian.PutUint64(cidBuf[:], h.ConnectionID)
		buf = append(buf, cidBuf[:]...)
	}
	buf = append(buf, CompressPacketNumber(h.PacketNumber, h.PNWidth)...)
	return buf, nil
}

// DecodeShortHeader parses a short header from the front of pkt, leaving
// the packet number compressed (the caller reconstructs the full value
// with DecompressPacketNumber once the connection's expected-next value is
// known). It returns the header and bytes consumed.
func DecodeShortHeader(pkt []byte) (ShortHeader, int, error) {
	if len(pkt) < 1 {
		return ShortHeader{}, 0, ErrShortPacket
	}
	if IsLongHeader(pkt[0]) {
		return ShortHeader{}, 0, ErrNotShortForm
	}
	h := ShortHeader{
		ConnectionIDPresent: pkt[0]&0x40 != 0,
	}
	width, ok := pnCodeToWidth[pkt[0]&0x03]
	if !ok {
		return ShortHeader{}, 0, ErrBadPNWidth
	}
	h.PNWidth = width
	off := 1
	if h.ConnectionIDPresent {
		if len(pkt) < off+8 {
			return ShortHeader{}, 0, ErrShortPacket
		}
		h.ConnectionID = binary.BigEndian.Uint64(pkt[off : off+8])
		off += 8
	}
	if len(pkt) < off+width {
		return ShortHeader{}, 0, ErrShortPacket
	}
	h.PacketNumber = decompressRaw(pkt[off:off+width], width)
	off += width
	return h, off, nil
}

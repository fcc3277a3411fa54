// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
// Package wire implements the mozquic-go packet and frame encodings: the
// long and short header forms, packet-number compression, and the frame
// tagged union.
//
// None of this package performs cryptography; AEAD protection of 1-RTT
// packets is the caller's responsibility (see the tlsbridge package).
// The cleartext integrity tag it provides (integrity.go) is a
// non-cryptographic FNV-1a digest. This package only ever sees plaintext
// header and frame bytes.
package wire

import "errors"

// MTU is the assumed IPv4 path MTU. PMTUD is out of scope.
const MTU = 1252

// MinClientInitial is the minimum padded size of a CLIENT_INITIAL datagram.
const MinClientInitial = 1200

// MSS bounds the size of a single stream chunk.
const MSS = 16384

// ALPN is the fixed application protocol identifier for this draft.
const ALPN = "hq-05"

// LongHeaderType enumerates the long-header packet types.
type LongHeaderType uint8

const (
	PacketTypeVersionNegotiation   LongHeaderType = 1
	PacketTypeClientInitial        LongHeaderType = 2
	PacketTypeServerStatelessRetry LongHeaderType = 3
	PacketTypeServerCleartext      LongHeaderType = 4
	PacketTypeClientCleartext      LongHeaderType = 5
	PacketType0RTTProtected        LongHeaderType = 6
	PacketType1RTTProtectedKP0     LongHeaderType = 7
	PacketType1RTTProtectedKP1     LongHeaderType = 8
	PacketTypePublicReset          LongHeaderType = 9
)

// longHeaderFlag is the high bit that marks a packet as using the long
// header form.
const longHeaderFlag = 0x80

var (
	ErrShortPacket  = errors.New("wire: packet too short")
	ErrNotLongForm  = errors.New("wire: expected long-header form")
	ErrNotShortForm = errors.New("wire: expected short-header form")
	ErrBadPNWidth   = errors.New("wire: invalid packet number width")
)

// IsLongHeader reports whether the first byte of a packet indicates the
// long header form.
func IsLongHeader(firstByte byte) bool {
	return firstByte&longHeaderFlag != 0
}

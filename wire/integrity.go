// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package wire

import (
	"encoding/binary"
	"hash/fnv"
)

// CleartextTagLen is the size of the integrity tag appended to every
// cleartext (non-AEAD-protected) packet: CLIENT_INITIAL, CLIENT_CLEARTEXT,
// SERVER_CLEARTEXT, and VERSION_NEGOTIATION.
const CleartextTagLen = 8

// AppendCleartextTag appends an 8-byte FNV-1a digest of pkt to pkt and
// returns the extended slice. This is not a cryptographic protection —
// cleartext packets are, by definition, sent before any key material
// exists — it only guards against accidental corruption in flight, the
// same role the original source's cleartext hash plays.
func AppendCleartextTag(pkt []byte) []byte {
	tag := cleartextTag(pkt)
	var buf [CleartextTagLen]byte
	binary.BigEndian.PutUint64(buf[:], tag)
	return append(pkt, buf[:]...)
}

// CheckCleartextTag reports whether pkt's trailing 8 bytes match the
// FNV-1a digest of the bytes preceding them, and returns the packet with
// the tag stripped.
func CheckCleartextTag(pkt []byte) (stripped []byte, ok bool) {
	if len(pkt) < CleartextTagLen {
		return nil, false
	}
	body := pkt[:len(pkt)-CleartextTagLen]
	want := binary.BigEndian.Uint64(pkt[len(pkt)-CleartextTagLen:])
	return body, cleartextTag(body) == want
}

func cleartextTag(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}

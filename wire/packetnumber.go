// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package wire

import "encoding/binary"

// decompressRaw reads a big-endian packet number of the given width
// (1, 2, or 4 bytes) without reconstructing its high bits.
func decompressRaw(buf []byte, width int) uint64 {
	var tmp [8]byte
	copy(tmp[8-width:], buf[:width])
	return binary.BigEndian.Uint64(tmp[:])
}

// CompressPacketNumber truncates full to its low width*8 bits, big-endian.
func CompressPacketNumber(full uint64, width int) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], full)
	out := make([]byte, width)
	copy(out, tmp[8-width:])
	return out
}

// DecompressPacketNumber reconstructs the full 64-bit packet number from a
// compressed value of the given width (bytes), choosing the candidate
// whose low bits match compressed and whose distance from expected is
// minimal. Ties are broken in favor of the lower candidate.
func DecompressPacketNumber(compressed uint64, width int, expected uint64) uint64 {
	bits := uint(width) * 8
	win := uint64(1) << bits
	mask := win - 1

	base := expected &^ mask
	candidates := make([]uint64, 0, 3)
	candidates = append(candidates, base|(compressed&mask))
	if base >= win {
		candidates = append(candidates, (base-win)|(compressed&mask))
	}
	candidates = append(candidates, (base+win)|(compressed&mask))

	best := candidates[0]
	bestDist := absDiff(best, expected)
	for _, c := range candidates[1:] {
		d := absDiff(c, expected)
		if d < bestDist || (d == bestDist && c < best) {
			best = c
			bestDist = d
		}
	}
	return best
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	cases := []struct {
		full     uint64
		width    int
		expected uint64
	}{
		{full: 100, width: 1, expected: 100},
		{full: 1000, width: 2, expected: 1000},
		{full: 70000, width: 4, expected: 70000},
		{full: 300, width: 1, expected: 250}, // wraps past one window of 256
	}
	for _, c := range cases {
		compressed := CompressPacketNumber(c.full, c.width)
		var raw uint64
		for _, b := range compressed {
			raw = raw<<8 | uint64(b)
		}
		got := DecompressPacketNumber(raw, c.width, c.expected)
		require.Equal(t, c.full, got)
	}
}

func TestDecompressPacketNumberTieBreaksLow(t *testing.T) {
	// width 1: window is 256. compressed=0 is equidistant from 256 and 0
	// when expected=128; the lower candidate must win.
	got := DecompressPacketNumber(0, 1, 128)
	require.Equal(t, uint64(0), got)
}

func TestDecompressPacketNumberNearWindowBoundary(t *testing.T) {
	// expected just below a window boundary, compressed value near the
	// bottom of the next window up should resolve forward, not backward.
	got := DecompressPacketNumber(0x02, 1, 0x1fe)
	require.Equal(t, uint64(0x202), got)
}

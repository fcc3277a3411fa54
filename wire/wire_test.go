// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLongHeaderRoundTrip(t *testing.T) {
	h := LongHeader{
		Type:         PacketTypeClientInitial,
		ConnectionID: 0x0102030405060708,
		PacketNumber: 42,
		Version:      0x00000005,
	}
	buf := EncodeLongHeader(nil, h)
	require.Len(t, buf, LongHeaderLen)
	require.True(t, IsLongHeader(buf[0]))

	got, n, err := DecodeLongHeader(buf)
	require.NoError(t, err)
	require.Equal(t, LongHeaderLen, n)
	require.Equal(t, h, got)
}

func TestDecodeLongHeaderTooShort(t *testing.T) {
	_, _, err := DecodeLongHeader(make([]byte, LongHeaderLen-1))
	require.ErrorIs(t, err, ErrShortPacket)
}

func TestShortHeaderRoundTrip(t *testing.T) {
	cases := []ShortHeader{
		{ConnectionIDPresent: false, PNWidth: 1, PacketNumber: 0x12},
		{ConnectionIDPresent: true, ConnectionID: 0xaabbccdd, PNWidth: 2, PacketNumber: 0x1234},
		{ConnectionIDPresent: true, ConnectionID: 7, PNWidth: 4, PacketNumber: 0xdeadbeef},
	}
	for _, h := range cases {
		buf, err := EncodeShortHeader(nil, h)
		require.NoError(t, err)
		require.False(t, IsLongHeader(buf[0]))

		got, n, err := DecodeShortHeader(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, h.ConnectionIDPresent, got.ConnectionIDPresent)
		require.Equal(t, h.ConnectionID, got.ConnectionID)
		require.Equal(t, h.PNWidth, got.PNWidth)
		// the compressed packet number only carries the low PNWidth*8 bits.
		mask := uint64(1)<<(uint(h.PNWidth)*8) - 1
		require.Equal(t, h.PacketNumber&mask, got.PacketNumber)
	}
}

func TestEncodeShortHeaderBadWidth(t *testing.T) {
	_, err := EncodeShortHeader(nil, ShortHeader{PNWidth: 3})
	require.ErrorIs(t, err, ErrBadPNWidth)
}

func TestCleartextTagRoundTrip(t *testing.T) {
	pkt := []byte("a cleartext client initial packet body")
	tagged := AppendCleartextTag(append([]byte(nil), pkt...))
	require.Len(t, tagged, len(pkt)+CleartextTagLen)

	stripped, ok := CheckCleartextTag(tagged)
	require.True(t, ok)
	require.Equal(t, pkt, stripped)
}

func TestCleartextTagDetectsCorruption(t *testing.T) {
	pkt := AppendCleartextTag([]byte("hello"))
	pkt[0] ^= 0xff
	_, ok := CheckCleartextTag(pkt)
	require.False(t, ok)
}

func TestCleartextTagTooShort(t *testing.T) {
	_, ok := CheckCleartextTag(make([]byte, CleartextTagLen-1))
	require.False(t, ok)
}

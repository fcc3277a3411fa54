// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package diag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := &Snapshot{
		ConnectionID:   0x1122334455667788,
		Version:        5,
		State:          "client-connected",
		NextSendPN:     12,
		ExpectedRecvPN: 9,
		ScoreboardSize: 2,
		UnackedChunks:  3,
		UnwrittenChunks: 1,
		Streams: []StreamSnapshot{
			{StreamID: 0, InAbsorbed: 40, InDone: true, OutNextOffset: 40, OutFinWritten: true},
			{StreamID: 1, InAbsorbed: 0, InDone: false, OutNextOffset: 100, OutFinWritten: false},
		},
	}

	data, err := Marshal(s)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, s, got)
}

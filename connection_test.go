// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	mozquic "github.com/hq05/mozquic-go"
)

func TestStartClientTwiceIsMisuse(t *testing.T) {
	client := mozquic.NewConnection(&mozquic.Config{
		OriginName:         "127.0.0.1",
		OriginPort:         4433,
		AppHandlesSendRecv: true,
		SupportedVersions:  []uint32{5},
	})
	require.NoError(t, client.StartClient())
	err := client.StartClient()
	require.Error(t, err)
	var misuse *mozquic.MisuseError
	require.ErrorAs(t, err, &misuse)
}

func TestCheckPeerArmsDeadlineBeforeExpiry(t *testing.T) {
	client := mozquic.NewConnection(&mozquic.Config{
		OriginName:         "127.0.0.1",
		OriginPort:         4433,
		AppHandlesSendRecv: true,
		SupportedVersions:  []uint32{5},
	})
	require.NoError(t, client.StartClient())

	// A deadline of a full minute from now cannot have already elapsed.
	require.Equal(t, mozquic.ErrOK, client.CheckPeer(60000))
}

func TestPeerAddrReflectsConfiguredOrigin(t *testing.T) {
	client := mozquic.NewConnection(&mozquic.Config{
		OriginName:         "127.0.0.1",
		OriginPort:         4433,
		AppHandlesSendRecv: true,
		SupportedVersions:  []uint32{5},
	})
	require.NoError(t, client.StartClient())
	peer := client.PeerAddr()
	require.Equal(t, [4]byte{127, 0, 0, 1}, peer.IP)
	require.Equal(t, uint16(4433), peer.Port)
}

func TestCloseTwiceIsMisuse(t *testing.T) {
	client := mozquic.NewConnection(&mozquic.Config{
		OriginName:         "127.0.0.1",
		OriginPort:         4433,
		AppHandlesSendRecv: true,
		SupportedVersions:  []uint32{5},
	})
	require.NoError(t, client.StartClient())

	var transmits int
	client.SetEventHandler(mozquic.EventHandlerFunc(func(conn *mozquic.Connection, id mozquic.EventID, payload interface{}) {
		if id == mozquic.EventTransmit {
			transmits++
		}
	}))

	require.NoError(t, client.Close(0, "done"))
	require.Greater(t, transmits, 0)

	// closing an already-closed connection is misuse.
	err := client.Close(0, "done again")
	require.Error(t, err)
	var misuse *mozquic.MisuseError
	require.ErrorAs(t, err, &misuse)
}

func TestDeleteStreamIgnoresUnfinishedStream(t *testing.T) {
	client := mozquic.NewConnection(&mozquic.Config{
		OriginName:         "127.0.0.1",
		OriginPort:         4433,
		AppHandlesSendRecv: true,
		SupportedVersions:  []uint32{5},
	})
	require.NoError(t, client.StartClient())

	id, err := client.StartNewStream()
	require.NoError(t, err)
	_, err = client.Write(id, []byte("unfinished"), false)
	require.NoError(t, err)

	client.DeleteStream(id) // not Done yet: must be a no-op
	_, err = client.Write(id, []byte("more"), true)
	require.NoError(t, err)

	// the stream's bookkeeping must still be present: its send offset
	// continues after the first write instead of restarting at zero.
	var nextOffset uint64
	for _, s := range client.Snapshot().Streams {
		if s.StreamID == id {
			nextOffset = s.OutNextOffset
		}
	}
	require.Equal(t, uint64(len("unfinished")+len("more")), nextOffset)
}

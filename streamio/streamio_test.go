// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package streamio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// collectWriter is a Writer that just appends every queued chunk, for
// exercising Out without pulling in the reliability package.
type collectWriter struct {
	chunks []*Chunk
}

func (w *collectWriter) QueueForSend(c *Chunk) {
	w.chunks = append(w.chunks, c)
}

func TestOutAssignsSequentialOffsets(t *testing.T) {
	w := &collectWriter{}
	out := NewOut(5, w)

	n, err := out.Write([]byte("hello"), false)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.False(t, out.Done())

	n, err = out.Write([]byte("world"), true)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.True(t, out.Done())
	require.Equal(t, uint64(10), out.NextOffset())

	require.Len(t, w.chunks, 2)
	require.Equal(t, uint64(0), w.chunks[0].Offset)
	require.False(t, w.chunks[0].Fin)
	require.Equal(t, uint64(5), w.chunks[1].Offset)
	require.True(t, w.chunks[1].Fin)
}

func TestOutWriteAfterFinFails(t *testing.T) {
	w := &collectWriter{}
	out := NewOut(1, w)
	require.NoError(t, out.EndStream())
	_, err := out.Write([]byte("late"), false)
	require.ErrorIs(t, err, ErrFinAlreadyWritten)
}

func TestOutSplitsAtMSS(t *testing.T) {
	w := &collectWriter{}
	out := NewOut(1, w)
	data := make([]byte, 16384+10)
	n, err := out.Write(data, true)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Len(t, w.chunks, 2)
	require.Len(t, w.chunks[0].Data, 16384)
	require.False(t, w.chunks[0].Fin)
	require.Len(t, w.chunks[1].Data, 10)
	require.True(t, w.chunks[1].Fin)
}

func TestInReassemblesInOrder(t *testing.T) {
	in := NewIn()
	require.NoError(t, in.Supply(&Chunk{Offset: 0, Data: []byte("hello ")}))
	require.NoError(t, in.Supply(&Chunk{Offset: 6, Data: []byte("world"), Fin: true}))

	buf := make([]byte, 64)
	n, fin := in.Read(buf)
	require.Equal(t, "hello world", string(buf[:n]))
	require.True(t, fin)
	require.True(t, in.Done())
}

func TestInReassemblesOutOfOrder(t *testing.T) {
	in := NewIn()
	require.NoError(t, in.Supply(&Chunk{Offset: 6, Data: []byte("world"), Fin: true}))
	require.False(t, in.Done())

	buf := make([]byte, 64)
	n, fin := in.Read(buf)
	require.Equal(t, 0, n) // gap at offset 0, nothing deliverable yet
	require.False(t, fin)

	require.NoError(t, in.Supply(&Chunk{Offset: 0, Data: []byte("hello ")}))
	n, fin = in.Read(buf)
	require.Equal(t, "hello world", string(buf[:n]))
	require.True(t, fin)
	require.Equal(t, uint64(11), in.Absorbed())
}

func TestInDropsFullyDuplicateChunk(t *testing.T) {
	in := NewIn()
	require.NoError(t, in.Supply(&Chunk{Offset: 0, Data: []byte("abc")}))
	buf := make([]byte, 3)
	n, _ := in.Read(buf)
	require.Equal(t, 3, n)

	// a retransmit of already-absorbed bytes must be silently discarded.
	require.NoError(t, in.Supply(&Chunk{Offset: 0, Data: []byte("abc")}))
	require.True(t, in.Empty())
}

func TestInTrimsOverlappingChunk(t *testing.T) {
	in := NewIn()
	require.NoError(t, in.Supply(&Chunk{Offset: 0, Data: []byte("abcde")}))
	// its first two bytes overlap bytes already buffered.
	require.NoError(t, in.Supply(&Chunk{Offset: 3, Data: []byte("defgh"), Fin: true}))

	buf := make([]byte, 64)
	n, fin := in.Read(buf)
	require.Equal(t, "abcdefgh", string(buf[:n]))
	require.True(t, fin)
}

func TestInRejectsConflictingFinOffset(t *testing.T) {
	in := NewIn()
	require.NoError(t, in.Supply(&Chunk{Offset: 0, Data: []byte("abc"), Fin: true}))
	err := in.Supply(&Chunk{Offset: 0, Data: []byte("abcd"), Fin: true})
	require.Error(t, err)
}

func TestPairDoneRequiresBothSides(t *testing.T) {
	w := &collectWriter{}
	p := NewPair(3, w)
	require.False(t, p.Done())

	require.NoError(t, p.In.Supply(&Chunk{Offset: 0, Fin: true}))
	buf := make([]byte, 8)
	p.In.Read(buf)
	require.True(t, p.In.Done())
	require.False(t, p.Done()) // out-side hasn't written fin yet

	require.NoError(t, p.Out.EndStream())
	require.True(t, p.Done())
}

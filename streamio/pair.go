// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package streamio

// Pair bundles the in and out sides of one stream, mirroring
// MozQuicStreamPair in the original mozquic source.
type Pair struct {
	StreamID uint32
	In       *In
	Out      *Out
}

// NewPair creates a stream pair whose out-side delivers chunks to w.
func NewPair(streamID uint32, w Writer) *Pair {
	return &Pair{
		StreamID: streamID,
		In:       NewIn(),
		Out:      NewOut(streamID, w),
	}
}

// Done reports the in-side's completion plus whether fin has been
// written at all on the out-side. It does not check that the written
// chunks have been acknowledged, and the connection layer adds no such
// check: DeleteStream consults only Done.
func (p *Pair) Done() bool {
	return p.In.Done() && p.Out.Done()
}

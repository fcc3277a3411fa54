// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
// Package diag defines a cbor-encodable snapshot of a connection's
// state, for dumping to disk or shipping to a debugging tool, in the
// same cbor-tagged-struct style as the corpus's PKI descriptor
// serialization.
package diag

import "github.com/fxamacker/cbor/v2"

// StreamSnapshot describes one stream's reassembly/send progress.
type StreamSnapshot struct {
	StreamID       uint32 `cbor:"stream_id"`
	InAbsorbed     uint64 `cbor:"in_absorbed"`
	InDone         bool   `cbor:"in_done"`
	OutNextOffset  uint64 `cbor:"out_next_offset"`
	OutFinWritten  bool   `cbor:"out_fin_written"`
}

// Snapshot is a point-in-time dump of a connection's bookkeeping.
type Snapshot struct {
	ConnectionID   uint64           `cbor:"connection_id"`
	Version        uint32           `cbor:"version"`
	State          string           `cbor:"state"`
	NextSendPN     uint64           `cbor:"next_send_pn"`
	ExpectedRecvPN uint64           `cbor:"expected_recv_pn"`
	ScoreboardSize int              `cbor:"scoreboard_size"`
	UnackedChunks  int              `cbor:"unacked_chunks"`
	UnwrittenChunks int             `cbor:"unwritten_chunks"`
	Streams        []StreamSnapshot `cbor:"streams"`
}

// Marshal encodes s as cbor.
func Marshal(s *Snapshot) ([]byte, error) {
	return cbor.Marshal(s)
}

// Unmarshal decodes a cbor-encoded Snapshot.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

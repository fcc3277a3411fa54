// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package streamio

import "github.com/hq05/mozquic-go/wire"

// Writer is the collaborator that accepts chunks produced by Out.Write,
// mirroring MozQuicWriter in the original mozquic source: the connection
// implements it to receive newly-written chunks onto its unwritten queue.
type Writer interface {
	// QueueForSend takes ownership of c and enqueues it for eventual
	// transmission.
	QueueForSend(c *Chunk)
}

// Out is the send side of a stream: an offset-assigning queue that
// slices written data into chunks of at most wire.MSS bytes and hands
// them to a Writer.
type Out struct {
	streamID uint32
	writer   Writer
	next     uint64
	finSet   bool
}

// NewOut creates a send-side buffer for the given stream ID, delivering
// chunks to w.
func NewOut(streamID uint32, w Writer) *Out {
	return &Out{streamID: streamID, writer: w}
}

// Done reports whether fin has been written.
func (o *Out) Done() bool {
	return o.finSet
}

// NextOffset reports the offset the next chunk written to the stream
// will be assigned.
func (o *Out) NextOffset() uint64 {
	return o.next
}

// Write slices data into chunks of at most wire.MSS bytes, assigns them
// sequential offsets, and hands them to the Writer. fin is set on the
// final chunk (or on an empty, zero-length final chunk if data is empty
// and fin is true) iff fin is true. Returns ErrFinAlreadyWritten if fin
// was previously written.
func (o *Out) Write(data []byte, fin bool) (int, error) {
	if o.finSet {
		return 0, ErrFinAlreadyWritten
	}
	if len(data) == 0 && !fin {
		return 0, nil
	}
	written := 0
	for {
		n := len(data) - written
		last := true
		if n > wire.MSS {
			n = wire.MSS
			last = false
		}
		chunkFin := last && fin
		c := &Chunk{
			StreamID: o.streamID,
			Offset:   o.next,
			Data:     append([]byte(nil), data[written:written+n]...),
			Fin:      chunkFin,
		}
		o.next += uint64(n)
		written += n
		o.writer.QueueForSend(c)
		if chunkFin {
			o.finSet = true
		}
		if last {
			break
		}
	}
	return written, nil
}

// EndStream writes a zero-length fin chunk, terminating the stream with
// no further application data.
func (o *Out) EndStream() error {
	_, err := o.Write(nil, true)
	return err
}

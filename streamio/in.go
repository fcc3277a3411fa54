// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package streamio

import "math"

// In is the receive side of a stream: an ordered list of chunks covering
// disjoint byte ranges, reassembled into an in-order byte stream for the
// application.
type In struct {
	absorbed     uint64
	finOffset    uint64 // math.MaxUint64 until a fin chunk arrives
	finRecvd     bool
	finDelivered bool

	available []*Chunk // sorted by Offset, disjoint, Offset >= absorbed
}

// NewIn creates an empty receive-side buffer.
func NewIn() *In {
	return &In{finOffset: math.MaxUint64}
}

// Empty reports whether there is nothing buffered.
func (in *In) Empty() bool {
	return len(in.available) == 0
}

// Absorbed reports the offset up to which bytes have been delivered to
// the application via Read.
func (in *In) Absorbed() uint64 {
	return in.absorbed
}

// Done reports whether fin has both arrived and been delivered to the
// application, i.e. the in-side has nothing further to offer.
func (in *In) Done() bool {
	return in.finDelivered && in.absorbed == in.finOffset
}

// Supply adds a freshly received chunk to the reassembly buffer. Bytes
// already absorbed or already covered by a buffered chunk are discarded;
// overlapping prefixes are trimmed so the buffer always holds disjoint
// ranges. It is an error for a later chunk to extend past an
// already-declared fin offset.
func (in *In) Supply(c *Chunk) error {
	// A chunk ending exactly at the absorbed offset is kept only when it
	// brings a fin not yet received (e.g. a zero-length fin).
	if c.End() < in.absorbed || (c.End() == in.absorbed && (!c.Fin || in.finRecvd)) {
		return nil // fully duplicate, drop silently
	}
	if c.Offset < in.absorbed {
		// trim the already-absorbed prefix
		trim := in.absorbed - c.Offset
		c = &Chunk{
			StreamID: c.StreamID,
			Offset:   in.absorbed,
			Data:     c.Data[trim:],
			Fin:      c.Fin,
		}
	}

	if c.Fin {
		fin := c.End()
		if in.finRecvd && fin != in.finOffset {
			return errFinOffsetMismatch
		}
		if fin < in.finOffset {
			in.finOffset = fin
		}
		in.finRecvd = true
	} else if in.finRecvd && c.End() > in.finOffset {
		return errPastFin
	}

	in.insert(c)
	return nil
}

// insert merges c into the sorted, disjoint available list, trimming any
// overlap against neighbors so the invariant (disjoint ranges, ascending
// offsets) is preserved.
func (in *In) insert(c *Chunk) {
	if len(c.Data) == 0 && !c.Fin {
		return
	}
	i := 0
	for i < len(in.available) && in.available[i].Offset < c.Offset {
		i++
	}
	// Trim c's tail against the chunk that starts at/after it.
	if i < len(in.available) {
		next := in.available[i]
		if c.End() > next.Offset {
			overlap := c.End() - next.Offset
			if overlap >= uint64(len(c.Data)) {
				c = &Chunk{StreamID: c.StreamID, Offset: c.Offset, Data: nil, Fin: false}
			} else {
				c = &Chunk{StreamID: c.StreamID, Offset: c.Offset, Data: c.Data[:uint64(len(c.Data))-overlap], Fin: false}
			}
		}
	}
	// Trim c's head against the chunk immediately before it.
	if i > 0 {
		prev := in.available[i-1]
		if prev.End() > c.Offset {
			trim := prev.End() - c.Offset
			if trim >= uint64(len(c.Data)) {
				return // fully covered by prev already
			}
			c = &Chunk{StreamID: c.StreamID, Offset: prev.End(), Data: c.Data[trim:], Fin: c.Fin}
		}
	}
	if len(c.Data) == 0 && !c.Fin {
		return
	}

	in.available = append(in.available, nil)
	copy(in.available[i+1:], in.available[i:])
	in.available[i] = c
}

// Read delivers as many contiguous bytes starting at the absorbed offset
// as fit in buffer, advancing the absorbed offset. fin is set once the
// absorbed offset reaches the declared fin offset and every byte up to it
// has been delivered.
func (in *In) Read(buffer []byte) (n int, fin bool) {
	for len(in.available) > 0 {
		head := in.available[0]
		if head.Offset > in.absorbed {
			break // gap, nothing more contiguous is available
		}
		skip := in.absorbed - head.Offset
		remaining := head.Data[skip:]
		room := len(buffer) - n
		if room <= 0 {
			break
		}
		take := len(remaining)
		if take > room {
			take = room
		}
		copy(buffer[n:], remaining[:take])
		n += take
		in.absorbed += uint64(take)

		if uint64(take) < uint64(len(remaining)) {
			break // buffer full mid-chunk
		}
		in.available = in.available[1:]
		if head.Fin && in.absorbed == in.finOffset {
			in.finDelivered = true
		}
	}
	return n, in.finDelivered && in.absorbed == in.finOffset
}

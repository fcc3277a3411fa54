// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package wire

import (
	"encoding/binary"
	"errors"
)

// FrameKind discriminates the decoded Frame tagged union.
type FrameKind uint8

const (
	FramePadding FrameKind = iota
	FrameRstStream
	FrameClose
	FrameGoaway
	FrameMaxData
	FrameMaxStreamData
	FrameMaxStreamID
	FramePing
	FrameBlocked
	FrameStreamBlocked
	FrameStreamIDNeeded
	FrameNewConnectionID
	FrameAck
	FrameStream
)

// op* are the single-byte opcodes for the fixed-size frame types.
const (
	opPadding          = 0x00
	opRstStream        = 0x01
	opClose            = 0x02
	opGoaway           = 0x03
	opMaxData          = 0x04
	opMaxStreamData    = 0x05
	opMaxStreamID      = 0x06
	opPing             = 0x07
	opBlocked          = 0x08
	opStreamBlocked    = 0x09
	opStreamIDNeeded   = 0x0A
	opNewConnectionID  = 0x0B
	ackRangeLow        = 0xA0
	ackRangeHigh       = 0xC0 // exclusive
	streamRangeLow     = 0xC0
)

var (
	ErrUnknownFrameType = errors.New("wire: unknown frame type")
	ErrTruncatedFrame   = errors.New("wire: truncated frame")
)

// RstStreamFrame is FRAME_TYPE_RST_STREAM (0x01, 17 bytes).
type RstStreamFrame struct {
	StreamID    uint32
	ErrorCode   uint32
	FinalOffset uint64
}

// CloseFrame is FRAME_TYPE_CLOSE (0x02, 7 + reason bytes).
type CloseFrame struct {
	ErrorCode uint32
	Reason    string
}

// GoawayFrame is FRAME_TYPE_GOAWAY (0x03, 9 bytes).
type GoawayFrame struct {
	ClientStreamID uint32
	ServerStreamID uint32
}

// MaxDataFrame is FRAME_TYPE_MAX_DATA (0x04, 9 bytes).
type MaxDataFrame struct {
	MaximumData uint64
}

// MaxStreamDataFrame is FRAME_TYPE_MAX_STREAM_DATA (0x05, 13 bytes).
type MaxStreamDataFrame struct {
	StreamID           uint32
	MaximumStreamData  uint64
}

// MaxStreamIDFrame is FRAME_TYPE_MAX_STREAM_ID (0x06, 5 bytes).
type MaxStreamIDFrame struct {
	MaximumStreamID uint32
}

// StreamBlockedFrame is FRAME_TYPE_STREAM_BLOCKED (0x09, 5 bytes).
type StreamBlockedFrame struct {
	StreamID uint32
}

// NewConnectionIDFrame is FRAME_TYPE_NEW_CONNECTION_ID (0x0B, 11 bytes).
type NewConnectionIDFrame struct {
	Sequence     uint16
	ConnectionID uint64
}

// AckTimestamp is one (delta-largest, time-since) pair trailing an ACK
// frame. Implementations must emit ack blocks but may omit timestamps;
// they must tolerate timestamps on receive.
type AckTimestamp struct {
	DeltaLargestAcked uint8
	TimeSince         uint16
}

// AckBlock is one (gap, length) pair following the first ack block.
type AckBlock struct {
	Gap    uint8
	Length uint64
}

// AckFrame is the decoded ACK frame (0xA0-0xBF).
type AckFrame struct {
	LargestAcked        uint64
	AckDelay            uint16
	FirstAckBlockLength uint64
	Blocks              []AckBlock
	Timestamps          []AckTimestamp
}

// StreamFrame is the decoded STREAM frame (0xC0-0xFF).
type StreamFrame struct {
	StreamID uint32
	Offset   uint64
	Fin      bool
	Data     []byte
}

// Frame is the decoded tagged union over every frame type.
type Frame struct {
	Kind FrameKind

	RstStream       *RstStreamFrame
	Close           *CloseFrame
	Goaway          *GoawayFrame
	MaxData         *MaxDataFrame
	MaxStreamData   *MaxStreamDataFrame
	MaxStreamID     *MaxStreamIDFrame
	StreamBlocked   *StreamBlockedFrame
	NewConnectionID *NewConnectionIDFrame
	Ack             *AckFrame
	Stream          *StreamFrame
}

// ackWidths maps the 2-bit ack width selector to a byte width.
var ackWidths = [4]int{1, 2, 4, 6}

func ackWidthCode(width int) (byte, error) {
	for i, w := range ackWidths {
		if w == width {
			return byte(i), nil
		}
	}
	return 0, errors.New("wire: invalid ack width")
}

// streamIDWidths and offsetWidths are the wire-selectable widths for the
// STREAM frame's stream ID and offset fields.
var streamIDWidths = [4]int{1, 2, 3, 4}
var offsetWidths = [4]int{0, 2, 4, 8}

func pickWidth(table [4]int, v uint64) (width int, code byte) {
	for i, w := range table {
		max := uint64(1)<<(uint(w)*8) - 1
		if w == 0 {
			max = 0
		}
		if v <= max {
			return w, byte(i)
		}
	}
	// fall back to the widest option available.
	last := len(table) - 1
	return table[last], byte(last)
}

func putUintWidth(buf []byte, v uint64, width int) []byte {
	if width == 0 {
		return buf
	}
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[8-width:]...)
}

func getUintWidth(buf []byte, width int) (uint64, error) {
	if width == 0 {
		return 0, nil
	}
	if len(buf) < width {
		return 0, ErrTruncatedFrame
	}
	var tmp [8]byte
	copy(tmp[8-width:], buf[:width])
	return binary.BigEndian.Uint64(tmp[:]), nil
}

// DecodeFrame reads one frame from the front of buf, returning the
// decoded frame and the number of bytes consumed.
func DecodeFrame(buf []byte) (Frame, int, error) {
	if len(buf) < 1 {
		return Frame{}, 0, ErrTruncatedFrame
	}
	typ := buf[0]

	switch {
	case typ < ackRangeLow:
		return decodeFixedFrame(typ, buf)
	case typ < streamRangeLow:
		return decodeAckFrame(typ, buf)
	default:
		return decodeStreamFrame(typ, buf)
	}
}

func decodeFixedFrame(typ byte, buf []byte) (Frame, int, error) {
	need := func(n int) error {
		if len(buf) < n {
			return ErrTruncatedFrame
		}
		return nil
	}
	switch typ {
	case opPadding:
		return Frame{Kind: FramePadding}, 1, nil
	case opPing:
		return Frame{Kind: FramePing}, 1, nil
	case opBlocked:
		return Frame{Kind: FrameBlocked}, 1, nil
	case opStreamIDNeeded:
		return Frame{Kind: FrameStreamIDNeeded}, 1, nil
	case opRstStream:
		if err := need(17); err != nil {
			return Frame{}, 0, err
		}
		f := &RstStreamFrame{
			StreamID:    binary.BigEndian.Uint32(buf[1:5]),
			ErrorCode:   binary.BigEndian.Uint32(buf[5:9]),
			FinalOffset: binary.BigEndian.Uint64(buf[9:17]),
		}
		return Frame{Kind: FrameRstStream, RstStream: f}, 17, nil
	case opClose:
		if err := need(7); err != nil {
			return Frame{}, 0, err
		}
		errCode := binary.BigEndian.Uint32(buf[1:5])
		reasonLen := int(binary.BigEndian.Uint16(buf[5:7]))
		if err := need(7 + reasonLen); err != nil {
			return Frame{}, 0, err
		}
		f := &CloseFrame{ErrorCode: errCode, Reason: string(buf[7 : 7+reasonLen])}
		return Frame{Kind: FrameClose, Close: f}, 7 + reasonLen, nil
	case opGoaway:
		if err := need(9); err != nil {
			return Frame{}, 0, err
		}
		f := &GoawayFrame{
			ClientStreamID: binary.BigEndian.Uint32(buf[1:5]),
			ServerStreamID: binary.BigEndian.Uint32(buf[5:9]),
		}
		return Frame{Kind: FrameGoaway, Goaway: f}, 9, nil
	case opMaxData:
		if err := need(9); err != nil {
			return Frame{}, 0, err
		}
		f := &MaxDataFrame{MaximumData: binary.BigEndian.Uint64(buf[1:9])}
		return Frame{Kind: FrameMaxData, MaxData: f}, 9, nil
	case opMaxStreamData:
		if err := need(13); err != nil {
			return Frame{}, 0, err
		}
		f := &MaxStreamDataFrame{
			StreamID:          binary.BigEndian.Uint32(buf[1:5]),
			MaximumStreamData: binary.BigEndian.Uint64(buf[5:13]),
		}
		return Frame{Kind: FrameMaxStreamData, MaxStreamData: f}, 13, nil
	case opMaxStreamID:
		if err := need(5); err != nil {
			return Frame{}, 0, err
		}
		f := &MaxStreamIDFrame{MaximumStreamID: binary.BigEndian.Uint32(buf[1:5])}
		return Frame{Kind: FrameMaxStreamID, MaxStreamID: f}, 5, nil
	case opStreamBlocked:
		if err := need(5); err != nil {
			return Frame{}, 0, err
		}
		f := &StreamBlockedFrame{StreamID: binary.BigEndian.Uint32(buf[1:5])}
		return Frame{Kind: FrameStreamBlocked, StreamBlocked: f}, 5, nil
	case opNewConnectionID:
		if err := need(11); err != nil {
			return Frame{}, 0, err
		}
		f := &NewConnectionIDFrame{
			Sequence:     binary.BigEndian.Uint16(buf[1:3]),
			ConnectionID: binary.BigEndian.Uint64(buf[3:11]),
		}
		return Frame{Kind: FrameNewConnectionID, NewConnectionID: f}, 11, nil
	default:
		return Frame{}, 0, ErrUnknownFrameType
	}
}

func decodeAckFrame(typ byte, buf []byte) (Frame, int, error) {
	numBlocksPresent := typ&0x10 != 0
	numTSPresent := typ&0x08 != 0
	widthCode := (typ >> 1) & 0x03
	width := ackWidths[widthCode]

	off := 1
	var numBlocks, numTS byte
	if numBlocksPresent {
		if len(buf) < off+1 {
			return Frame{}, 0, ErrTruncatedFrame
		}
		numBlocks = buf[off]
		off++
	}
	if numTSPresent {
		if len(buf) < off+1 {
			return Frame{}, 0, ErrTruncatedFrame
		}
		numTS = buf[off]
		off++
	}
	largest, err := getUintWidth(buf[off:], width)
	if err != nil {
		return Frame{}, 0, err
	}
	off += width
	if len(buf) < off+2 {
		return Frame{}, 0, ErrTruncatedFrame
	}
	delay := binary.BigEndian.Uint16(buf[off : off+2])
	off += 2
	first, err := getUintWidth(buf[off:], width)
	if err != nil {
		return Frame{}, 0, err
	}
	off += width

	blocks := make([]AckBlock, 0, numBlocks)
	for i := 0; i < int(numBlocks); i++ {
		if len(buf) < off+1 {
			return Frame{}, 0, ErrTruncatedFrame
		}
		gap := buf[off]
		off++
		length, err := getUintWidth(buf[off:], width)
		if err != nil {
			return Frame{}, 0, err
		}
		off += width
		blocks = append(blocks, AckBlock{Gap: gap, Length: length})
	}

	timestamps := make([]AckTimestamp, 0, numTS)
	for i := 0; i < int(numTS); i++ {
		if len(buf) < off+3 {
			return Frame{}, 0, ErrTruncatedFrame
		}
		ts := AckTimestamp{
			DeltaLargestAcked: buf[off],
			TimeSince:         binary.BigEndian.Uint16(buf[off+1 : off+3]),
		}
		off += 3
		timestamps = append(timestamps, ts)
	}

	f := &AckFrame{
		LargestAcked:        largest,
		AckDelay:            delay,
		FirstAckBlockLength: first,
		Blocks:              blocks,
		Timestamps:          timestamps,
	}
	return Frame{Kind: FrameAck, Ack: f}, off, nil
}

func decodeStreamFrame(typ byte, buf []byte) (Frame, int, error) {
	fin := typ&0x20 != 0
	streamIDCode := (typ >> 3) & 0x03
	offsetCode := (typ >> 1) & 0x03
	dataLenPresent := typ&0x01 != 0

	streamIDWidth := streamIDWidths[streamIDCode]
	offsetWidth := offsetWidths[offsetCode]

	off := 1
	streamID, err := getUintWidth(buf[off:], streamIDWidth)
	if err != nil {
		return Frame{}, 0, err
	}
	off += streamIDWidth
	offset, err := getUintWidth(buf[off:], offsetWidth)
	if err != nil {
		return Frame{}, 0, err
	}
	off += offsetWidth

	var data []byte
	if dataLenPresent {
		if len(buf) < off+2 {
			return Frame{}, 0, ErrTruncatedFrame
		}
		dataLen := int(binary.BigEndian.Uint16(buf[off : off+2]))
		off += 2
		if len(buf) < off+dataLen {
			return Frame{}, 0, ErrTruncatedFrame
		}
		data = buf[off : off+dataLen]
		off += dataLen
	} else {
		data = buf[off:]
		off = len(buf)
	}

	f := &StreamFrame{
		StreamID: uint32(streamID),
		Offset:   offset,
		Fin:      fin,
		Data:     data,
	}
	return Frame{Kind: FrameStream, Stream: f}, off, nil
}

// EncodeStreamFrame appends the wire form of f to buf. runToEnd, when
// true, omits the data-length field so the payload runs to the end of the
// enclosing packet (only valid for the last frame in a packet).
func EncodeStreamFrame(buf []byte, f StreamFrame, runToEnd bool) []byte {
	_, streamIDCode := pickWidth(streamIDWidths, uint64(f.StreamID))
	streamIDWidth := streamIDWidths[streamIDCode]
	// stream ID width must be large enough to hold the value even when it
	// doesn't divide evenly into {1,2,3,4}; widen if necessary.
	for uint64(f.StreamID) > (uint64(1)<<(uint(streamIDWidth)*8))-1 && streamIDCode < 3 {
		streamIDCode++
		streamIDWidth = streamIDWidths[streamIDCode]
	}
	_, offsetCode := pickWidth(offsetWidths, f.Offset)
	offsetWidth := offsetWidths[offsetCode]
	for offsetWidth != 0 && f.Offset > (uint64(1)<<(uint(offsetWidth)*8))-1 && offsetCode < 3 {
		offsetCode++
		offsetWidth = offsetWidths[offsetCode]
	}

	var typ byte = streamRangeLow
	if f.Fin {
		typ |= 0x20
	}
	typ |= streamIDCode << 3
	typ |= offsetCode << 1
	if !runToEnd {
		typ |= 0x01
	}
	buf = append(buf, typ)
	buf = putUintWidth(buf, uint64(f.StreamID), streamIDWidth)
	buf = putUintWidth(buf, f.Offset, offsetWidth)
	if !runToEnd {
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(f.Data)))
		buf = append(buf, lenBuf[:]...)
	}
	buf = append(buf, f.Data...)
	return buf
}

// EncodeAckFrame appends the wire form of f to buf, choosing the
// narrowest width that fits LargestAcked, FirstAckBlockLength and every
// block length.
func EncodeAckFrame(buf []byte, f AckFrame) []byte {
	largest := f.LargestAcked
	if f.FirstAckBlockLength > largest {
		largest = f.FirstAckBlockLength
	}
	for _, b := range f.Blocks {
		if b.Length > largest {
			largest = b.Length
		}
	}
	_, widthCode := pickWidth(ackWidths, largest)
	width := ackWidths[widthCode]

	var typ byte = ackRangeLow
	if len(f.Blocks) > 0 {
		typ |= 0x10
	}
	if len(f.Timestamps) > 0 {
		typ |= 0x08
	}
	typ |= widthCode << 1

	buf = append(buf, typ)
	if len(f.Blocks) > 0 {
		buf = append(buf, byte(len(f.Blocks)))
	}
	if len(f.Timestamps) > 0 {
		buf = append(buf, byte(len(f.Timestamps)))
	}
	buf = putUintWidth(buf, f.LargestAcked, width)
	var delayBuf [2]byte
	binary.BigEndian.PutUint16(delayBuf[:], f.AckDelay)
	buf = append(buf, delayBuf[:]...)
	buf = putUintWidth(buf, f.FirstAckBlockLength, width)
	for _, b := range f.Blocks {
		buf = append(buf, b.Gap)
		buf = putUintWidth(buf, b.Length, width)
	}
	for _, ts := range f.Timestamps {
		buf = append(buf, ts.DeltaLargestAcked)
		var tsBuf [2]byte
		binary.BigEndian.PutUint16(tsBuf[:], ts.TimeSince)
		buf = append(buf, tsBuf[:]...)
	}
	return buf
}

// EncodeFixedFrame appends the wire form of any single-byte-opcode frame
// (every Frame whose Kind is not FrameAck or FrameStream) to buf.
func EncodeFixedFrame(buf []byte, f Frame) ([]byte, error) {
	switch f.Kind {
	case FramePadding:
		return append(buf, opPadding), nil
	case FramePing:
		return append(buf, opPing), nil
	case FrameBlocked:
		return append(buf, opBlocked), nil
	case FrameStreamIDNeeded:
		return append(buf, opStreamIDNeeded), nil
	case FrameRstStream:
		r := f.RstStream
		buf = append(buf, opRstStream)
		var tmp [16]byte
		binary.BigEndian.PutUint32(tmp[0:4], r.StreamID)
		binary.BigEndian.PutUint32(tmp[4:8], r.ErrorCode)
		binary.BigEndian.PutUint64(tmp[8:16], r.FinalOffset)
		return append(buf, tmp[:]...), nil
	case FrameClose:
		c := f.Close
		buf = append(buf, opClose)
		var tmp [6]byte
		binary.BigEndian.PutUint32(tmp[0:4], c.ErrorCode)
		binary.BigEndian.PutUint16(tmp[4:6], uint16(len(c.Reason)))
		buf = append(buf, tmp[:]...)
		return append(buf, c.Reason...), nil
	case FrameGoaway:
		g := f.Goaway
		buf = append(buf, opGoaway)
		var tmp [8]byte
		binary.BigEndian.PutUint32(tmp[0:4], g.ClientStreamID)
		binary.BigEndian.PutUint32(tmp[4:8], g.ServerStreamID)
		return append(buf, tmp[:]...), nil
	case FrameMaxData:
		m := f.MaxData
		buf = append(buf, opMaxData)
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], m.MaximumData)
		return append(buf, tmp[:]...), nil
	case FrameMaxStreamData:
		m := f.MaxStreamData
		buf = append(buf, opMaxStreamData)
		var tmp [12]byte
		binary.BigEndian.PutUint32(tmp[0:4], m.StreamID)
		binary.BigEndian.PutUint64(tmp[4:12], m.MaximumStreamData)
		return append(buf, tmp[:]...), nil
	case FrameMaxStreamID:
		m := f.MaxStreamID
		buf = append(buf, opMaxStreamID)
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], m.MaximumStreamID)
		return append(buf, tmp[:]...), nil
	case FrameStreamBlocked:
		s := f.StreamBlocked
		buf = append(buf, opStreamBlocked)
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], s.StreamID)
		return append(buf, tmp[:]...), nil
	case FrameNewConnectionID:
		n := f.NewConnectionID
		buf = append(buf, opNewConnectionID)
		var tmp [10]byte
		binary.BigEndian.PutUint16(tmp[0:2], n.Sequence)
		binary.BigEndian.PutUint64(tmp[2:10], n.ConnectionID)
		return append(buf, tmp[:]...), nil
	default:
		return nil, ErrUnknownFrameType
	}
}

// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

// EventID enumerates the event IDs delivered to the host's event handler.
type EventID uint32

const (
	EventNewStreamData       EventID = 0
	EventStreamReset         EventID = 1
	EventConnected           EventID = 2
	EventAcceptNewConnection EventID = 3
	EventCloseConnection     EventID = 4
	EventIO                  EventID = 5
	EventError               EventID = 6
	EventLog                 EventID = 7
	EventTransmit            EventID = 8
	EventRecv                EventID = 9
	EventTLSInput            EventID = 10
)

// TransmitPayload is the argument passed alongside EventTransmit when the
// host has taken over socket I/O (Config.AppHandlesSendRecv).
type TransmitPayload struct {
	Packet []byte
	Peer   *Addr
}

// RecvPayload is the payload shape for EventRecv: the host fills Packet
// and reports how much it wrote. No code in this package emits EventRecv;
// incoming datagrams arrive through FeedPacket.
type RecvPayload struct {
	Packet  []byte
	Written *int
}

// TLSInputPayload is the argument passed alongside EventTLSInput: raw
// stream-0 handshake bytes the host should feed to its TLS collaborator.
type TLSInputPayload struct {
	Data []byte
}

// StreamResetPayload accompanies EventStreamReset.
type StreamResetPayload struct {
	StreamID    uint32
	ErrorCode   uint32
	FinalOffset uint64
}

// EventHandler receives connection lifecycle and I/O events. A nil
// handler is legal; events are simply dropped.
type EventHandler interface {
	HandleEvent(conn *Connection, id EventID, payload interface{})
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(conn *Connection, id EventID, payload interface{})

// HandleEvent implements EventHandler.
func (f EventHandlerFunc) HandleEvent(conn *Connection, id EventID, payload interface{}) {
	if f != nil {
		f(conn, id, payload)
	}
}

// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

// connectionState enumerates the connection's lifecycle states
// (connectionState in the original mozquic source).
type connectionState int

const (
	stateUninitialized connectionState = iota

	clientState0RTT
	clientState1RTT
	clientStateConnected
	clientStateClosed

	// serverStateBreak is a sentinel, not a reachable state: it only
	// exists so isServerState can test s > serverStateBreak, the same
	// boundary trick the original source uses.
	serverStateBreak

	serverStateListen
	serverState0RTT
	serverState1RTT
	serverStateConnected
	serverStateClosed
)

func (s connectionState) String() string {
	switch s {
	case stateUninitialized:
		return "UNINITIALIZED"
	case clientState0RTT:
		return "CLIENT_0RTT"
	case clientState1RTT:
		return "CLIENT_1RTT"
	case clientStateConnected:
		return "CLIENT_CONNECTED"
	case clientStateClosed:
		return "CLIENT_CLOSED"
	case serverStateListen:
		return "SERVER_LISTEN"
	case serverState0RTT:
		return "SERVER_0RTT"
	case serverState1RTT:
		return "SERVER_1RTT"
	case serverStateConnected:
		return "SERVER_CONNECTED"
	case serverStateClosed:
		return "SERVER_CLOSED"
	default:
		return "UNKNOWN"
	}
}

// isServerState reports whether s belongs to the server-side state set.
func (s connectionState) isServerState() bool {
	return s > serverStateBreak
}

// isClosed reports whether the connection has finished its lifecycle.
func (s connectionState) isClosed() bool {
	return s == clientStateClosed || s == serverStateClosed
}

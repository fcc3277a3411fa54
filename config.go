// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

// Addr is an IPv4 peer address. IPv6 is out of scope.
type Addr struct {
	IP   [4]byte
	Port uint16
}

// Config is the Go analogue of mozquic_config_t.
type Config struct {
	OriginName string
	OriginPort int

	// HandleIO, when true, makes the connection drive its own I/O loop on
	// a background goroutine (internal/worker) rather than requiring the
	// host to call IO() explicitly.
	HandleIO bool

	GreaseVersionNegotiation bool
	PreferMilestoneVersion   bool
	IgnorePKI                bool
	TolerateBadALPN          bool

	// AppHandlesSendRecv, when true, keeps the connection off any
	// net.Conn: outgoing datagrams are handed to the host through
	// EventTransmit, and the host passes incoming datagrams in with
	// FeedPacket. EventRecv is never emitted. Stream-0 handshake bytes
	// are reported through EventTLSInput in either mode.
	AppHandlesSendRecv bool

	EventHandler EventHandler

	// SupportedVersions lists the versions a server will accept, in
	// descending preference order. The first entry is this config's
	// preferred version.
	SupportedVersions []uint32

	// MilestoneVersion is offered instead of SupportedVersions[0] when
	// PreferMilestoneVersion is set.
	MilestoneVersion uint32
}

// preferredVersion returns the version StartClient should advertise.
func (c *Config) preferredVersion() uint32 {
	if c.PreferMilestoneVersion {
		return c.MilestoneVersion
	}
	if len(c.SupportedVersions) == 0 {
		return 0
	}
	return c.SupportedVersions[0]
}

func (c *Config) versionSupported(v uint32) bool {
	for _, sv := range c.SupportedVersions {
		if sv == v {
			return true
		}
	}
	return c.PreferMilestoneVersion && v == c.MilestoneVersion
}

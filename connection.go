// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
// Package mozquic implements a user-space QUIC transport endpoint for an
// early QUIC draft (ALPN "hq-05"): packet framing, stream reassembly, an
// ack scoreboard, fixed-timeout retransmission, and server-side
// connection demultiplexing, with the TLS handshake and AEAD left to an
// external collaborator reached through the tlsbridge package.
package mozquic

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hq05/mozquic-go/ackbook"
	"github.com/hq05/mozquic-go/internal/worker"
	"github.com/hq05/mozquic-go/reliability"
	"github.com/hq05/mozquic-go/streamio"
	"github.com/hq05/mozquic-go/tlsbridge"
	"github.com/hq05/mozquic-go/wire"
)

// role identifies which side of the handshake a Connection plays.
type role uint8

const (
	roleClient role = iota
	roleServer
	roleServerChild
)

// Connection is one QUIC connection: a client connection, a listening
// server, or one of a listening server's accepted children.
type Connection struct {
	worker.Worker

	mu  sync.Mutex
	log *log.Logger

	role    role
	state   connectionState
	version uint32
	cfg     *Config

	pconn net.PacketConn
	peer  Addr

	// server-parent-only demultiplexing state.
	parent          *Connection
	children        map[uint64]*Connection
	recentClientIDs map[uint64]recentClientEntry
	dedupFilter     *dedupFilter

	connectionID uint64

	nextSendPN     uint64
	expectedRecvPN uint64
	sentInitial    bool

	stream0      *streamio.Pair
	streams      map[uint32]*streamio.Pair
	nextStreamID uint32

	ack *ackbook.Scoreboard
	rq  *reliability.Queue

	sendKeyPhase  tlsbridge.KeyPhase
	aead          tlsbridge.AEAD
	handshakeInfo *tlsbridge.HandshakeInfo

	eventHandler EventHandler

	createdAt    int64
	pingDeadline int64

	closed   bool
	closeErr error
}

// recentClientEntry records the child accepted for a client connection
// ID and when its first CLIENT_INITIAL arrived, for the server's dedup
// sweep.
type recentClientEntry struct {
	child     *Connection
	firstSeen int64
}

// NewConnection creates a connection in its uninitialized state. Call
// StartClient or StartServer next.
func NewConnection(cfg *Config) *Connection {
	if cfg == nil {
		cfg = &Config{}
	}
	c := &Connection{
		cfg:          cfg,
		state:        stateUninitialized,
		streams:      make(map[uint32]*streamio.Pair),
		ack:          ackbook.New(),
		rq:           reliability.New(),
		eventHandler: cfg.EventHandler,
		createdAt:    time.Now().UnixMilli(),
		log:          log.NewWithOptions(os.Stderr, log.Options{Prefix: "mozquic"}),
	}
	c.stream0 = streamio.NewPair(0, c.rq)
	return c
}

func randomConnectionID() uint64 {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return binary.BigEndian.Uint64(buf[:])
}

// StartClient binds a UDP socket to the peer named by cfg.OriginName /
// cfg.OriginPort, picks a random connection ID, and emits a
// CLIENT_INITIAL padded to at least wire.MinClientInitial bytes. Any
// handshake bytes the host wants carried in that first datagram must
// already have been queued with HandshakeOutput.
func (c *Connection) StartClient() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateUninitialized {
		return newMisuseError(ErrAlreadyFinished, "StartClient called twice")
	}
	c.role = roleClient
	c.connectionID = randomConnectionID()
	c.version = c.cfg.preferredVersion()
	c.nextStreamID = 1 // client-initiated streams are odd

	addr := net.JoinHostPort(c.cfg.OriginName, fmt.Sprintf("%d", c.cfg.OriginPort))
	udpAddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return &IOError{Err: err}
	}
	if !c.cfg.AppHandlesSendRecv {
		conn, err := net.DialUDP("udp4", nil, udpAddr)
		if err != nil {
			return &IOError{Err: err}
		}
		c.pconn = conn
	}
	c.peer = addrFromUDP(udpAddr)
	c.state = clientState0RTT
	c.log = log.NewWithOptions(os.Stderr, log.Options{Prefix: fmt.Sprintf("mozquic[client %x]", c.connectionID)})

	if err := c.sendClientInitialLocked(); err != nil {
		return err
	}
	if c.cfg.HandleIO {
		c.startIOLoopLocked()
	}
	return nil
}

// StartServer binds a shared UDP listening socket and puts the
// connection into its listening state. Accepted children are reached
// through the EventAcceptNewConnection callback, never returned from
// this call.
func (c *Connection) StartServer() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateUninitialized {
		return newMisuseError(ErrAlreadyFinished, "StartServer called twice")
	}
	c.role = roleServer
	c.version = c.cfg.preferredVersion()
	c.nextStreamID = 2 // server-initiated streams are even
	c.children = make(map[uint64]*Connection)
	c.recentClientIDs = make(map[uint64]recentClientEntry)
	c.dedupFilter = newDedupFilter()
	c.log = log.NewWithOptions(os.Stderr, log.Options{Prefix: "mozquic[server]"})

	if !c.cfg.AppHandlesSendRecv {
		addr := net.JoinHostPort(c.cfg.OriginName, fmt.Sprintf("%d", c.cfg.OriginPort))
		udpAddr, err := net.ResolveUDPAddr("udp4", addr)
		if err != nil {
			return &IOError{Err: err}
		}
		conn, err := net.ListenUDP("udp4", udpAddr)
		if err != nil {
			return &IOError{Err: err}
		}
		c.pconn = conn
	}
	c.state = serverStateListen
	if c.cfg.HandleIO {
		c.startIOLoopLocked()
	}
	return nil
}

// SetEventHandler installs (or replaces) the connection's event handler.
func (c *Connection) SetEventHandler(h EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eventHandler = h
}

// CheckPeer arms (or re-arms, if already armed) a ping deadline
// deadlineMillis from now, and reports whether the previous deadline, if
// any, has already elapsed without a packet from the peer (MozQuicInternal.h
// CheckPeer(uint32_t)). A host can poll this to notice a gone-silent peer
// without waiting for the reliability queue's own give-up timeout.
func (c *Connection) CheckPeer(deadlineMillis uint32) ErrCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	expired := c.pingDeadline != 0 && now >= c.pingDeadline
	c.pingDeadline = now + int64(deadlineMillis)
	if expired {
		return ErrIO
	}
	return ErrOK
}

// PeerAddr reports the connection's current peer address.
func (c *Connection) PeerAddr() Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peer
}

// GetFD exposes the connection's underlying socket, if any, for a host
// that wants to multiplex it into its own event loop.
func (c *Connection) GetFD() net.PacketConn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pconn
}

// SetFD installs a socket the host has already created in place of one
// this connection would otherwise open itself.
func (c *Connection) SetFD(p net.PacketConn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pconn = p
}

// StartNewStream allocates the next stream ID this side is permitted to
// initiate and returns its pair.
func (c *Connection) StartNewStream() (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, newMisuseError(ErrAlreadyFinished, "connection closed")
	}
	id := c.nextStreamID
	c.nextStreamID += 2
	c.streams[id] = streamio.NewPair(id, c.rq)
	return id, nil
}

// Write appends data to streamID's send side, creating the stream if it
// has never been written to before.
func (c *Connection) Write(streamID uint32, data []byte, fin bool) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, newMisuseError(ErrAlreadyFinished, "connection closed")
	}
	p := c.streamPairLocked(streamID)
	return p.Out.Write(data, fin)
}

// EndStream writes a zero-length fin on streamID.
func (c *Connection) EndStream(streamID uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return newMisuseError(ErrAlreadyFinished, "connection closed")
	}
	p := c.streamPairLocked(streamID)
	return p.Out.EndStream()
}

// Read drains streamID's receive side into buffer.
func (c *Connection) Read(streamID uint32, buffer []byte) (n int, fin bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.streams[streamID]
	if streamID == 0 {
		p = c.stream0
		ok = true
	}
	if !ok {
		return 0, false
	}
	return p.In.Read(buffer)
}

// DeleteStream drops a fully-done stream's bookkeeping. It is legal to
// call on a stream that is not yet Done; the call is simply ignored.
func (c *Connection) DeleteStream(streamID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.streams[streamID]
	if !ok || !p.Done() {
		return
	}
	delete(c.streams, streamID)
}

func (c *Connection) streamPairLocked(streamID uint32) *streamio.Pair {
	if streamID == 0 {
		return c.stream0
	}
	p, ok := c.streams[streamID]
	if !ok {
		p = streamio.NewPair(streamID, c.rq)
		c.streams[streamID] = p
	}
	return p
}

// Destroy tears down the connection: background goroutines are halted
// and joined, and the socket is closed if this connection owns one.
func (c *Connection) Destroy() error {
	c.Worker.Halt()
	c.Worker.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.role != roleServerChild && c.pconn != nil {
		return c.pconn.Close()
	}
	return nil
}

func (c *Connection) startIOLoopLocked() {
	c.Worker.Go(func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-c.Worker.HaltCh():
				return
			case <-ticker.C:
				_ = c.IO()
			}
		}
	})
}

func (c *Connection) emit(id EventID, payload interface{}) {
	if c.eventHandler != nil {
		c.eventHandler.HandleEvent(c, id, payload)
	}
}

func (c *Connection) now() int64 {
	return time.Now().UnixMilli()
}

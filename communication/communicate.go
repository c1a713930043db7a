// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package communication connects the parties of a protocol with mutually authenticated TLS,
// and relays protocol.Message values between a protocol.Handler and its peers.
package communication

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/protocol"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// RoleServer marks a peer that listens, the local party dials it.
	RoleServer = "server"
	// RoleClient marks a peer that dials the local party.
	RoleClient = "client"

	// maxFrame bounds the size of a single message.
	maxFrame = 1 << 24
)

// Party is a peer of the local party.
type Party struct {
	ID       party.ID `json:"id"`
	Address  string   `json:"addr"`
	ConnRole string   `json:"connRole"`
}

// LocalConfig struct represents the connection settings of the local party.
type LocalConfig struct {
	LocalID party.ID `json:"localID"`
	// LocalAddr is where the local party listens for its clients.
	LocalAddr string `json:"localAddr"`
	// LocalCanBeServer is false for a party without a reachable address, it then only dials.
	LocalCanBeServer bool    `json:"localCanBeServer"`
	OtherPartyInfo   []Party `json:"otherPartyInfo"`

	CaPath   string `json:"caPath"`
	CertPath string `json:"certPath"`
	KeyPath  string `json:"keyPath"`

	TimeOutSecond int `json:"timeOutSecond"`
}

// LoadLocalConfig reads a LocalConfig from a JSON file.
func LoadLocalConfig(path string) (*LocalConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Errorf("fail open %s", path)
		return nil, err
	}
	var cfg LocalConfig
	if err = json.Unmarshal(data, &cfg); err != nil {
		log.Errorf("fail unmarshal %s", path)
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debugf("done unmarshal %s", path)
	return &cfg, nil
}

// Validate checks that every peer is named once and that a party which is dialed can listen.
func (cfg *LocalConfig) Validate() error {
	if err := cfg.LocalID.Validate(); err != nil {
		return fmt.Errorf("communication: local ID: %w", err)
	}
	seen := map[party.ID]bool{cfg.LocalID: true}
	for _, p := range cfg.OtherPartyInfo {
		if seen[p.ID] || p.ID.Validate() != nil {
			return fmt.Errorf("communication: invalid or duplicate peer %q", p.ID)
		}
		seen[p.ID] = true
		switch p.ConnRole {
		case RoleServer:
			if p.Address == "" {
				return fmt.Errorf("communication: server %s has no address", p.ID)
			}
		case RoleClient:
			if !cfg.LocalCanBeServer {
				return fmt.Errorf("communication: %s dials %s, which cannot be a server", p.ID, cfg.LocalID)
			}
		default:
			return fmt.Errorf("communication: unknown role %q for %s", p.ConnRole, p.ID)
		}
	}
	return nil
}

// PartyIDs returns the sorted IDs of the local party and its peers.
func (cfg *LocalConfig) PartyIDs() party.IDSlice {
	ids := []party.ID{cfg.LocalID}
	for _, p := range cfg.OtherPartyInfo {
		ids = append(ids, p.ID)
	}
	return party.NewIDSlice(ids)
}

// LoadCertPool function loads a certificate authority (CA) file and creates a new x509.CertPool
func LoadCertPool(caFile string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("pool append certs from pem failed")
	}
	return pool, nil
}

// LoadTLSConfig function loads a TLS configuration by loading a certificate authority (CA) file, a certificate file, and a key file.
// The same certificate is presented as server and as client, peers must be signed by the CA.
func LoadTLSConfig(caFile, certFile, keyFile string) (*tls.Config, error) {
	pool, err := LoadCertPool(caFile)
	if err != nil {
		return nil, fmt.Errorf("load cert pool from (%s): %w", caFile, err)
	}
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load x509 key pair from (%s, %s): %w", certFile, keyFile, err)
	}
	return &tls.Config{
		RootCAs:      pool,
		ClientCAs:    pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}, nil
}

// peerConn serializes the writes to one connection.
type peerConn struct {
	conn net.Conn
	mtx  sync.Mutex
}

func (p *peerConn) write(data []byte) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return writeFrame(p.conn, data)
}

// LocalConn holds the TLS connections of the local party to every peer.
type LocalConn struct {
	LocalConfig *LocalConfig
	tlsConfig   *tls.Config
	listener    net.Listener

	mtx       sync.Mutex
	idConnMap map[party.ID]*peerConn
}

// NewLocalConn returns an unconnected LocalConn.
func NewLocalConn(cfg *LocalConfig, tlsConfig *tls.Config) *LocalConn {
	return &LocalConn{
		LocalConfig: cfg,
		tlsConfig:   tlsConfig,
		idConnMap:   make(map[party.ID]*peerConn, len(cfg.OtherPartyInfo)),
	}
}

// Listen opens the listener of the local party and returns its address.
// It is called by StartServer when needed.
func (c *LocalConn) Listen() (net.Addr, error) {
	if c.listener != nil {
		return c.listener.Addr(), nil
	}
	if !c.LocalConfig.LocalCanBeServer {
		return nil, errors.New("communication: local party cannot be a server")
	}
	listener, err := tls.Listen("tcp", c.LocalConfig.LocalAddr, c.tlsConfig)
	if err != nil {
		log.Errorln("fail listen tcp")
		return nil, err
	}
	log.Infof("start listen %v on %v", c.LocalConfig.LocalID, listener.Addr())
	c.listener = listener
	return listener.Addr(), nil
}

// StartServer establishes a connection with every peer: it dials the servers and accepts the clients.
// Each side of a connection first sends its ID.
func (c *LocalConn) StartServer(ctx context.Context) error {
	log.Infoln("start build connection between parties")
	if c.LocalConfig.TimeOutSecond > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.LocalConfig.TimeOutSecond)*time.Second)
		defer cancel()
	}

	clients := 0
	for _, p := range c.LocalConfig.OtherPartyInfo {
		if p.ConnRole == RoleClient {
			clients++
		}
	}
	if clients > 0 {
		if _, err := c.Listen(); err != nil {
			return err
		}
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, p := range c.LocalConfig.OtherPartyInfo {
		if p.ConnRole != RoleServer {
			continue
		}
		p := p
		group.Go(func() error { return c.dial(ctx, p) })
	}
	if clients > 0 {
		group.Go(func() error { return c.accept(ctx, clients) })
	}
	if err := group.Wait(); err != nil {
		c.Close()
		return err
	}
	log.Infof("parties set up %v connections", len(c.LocalConfig.OtherPartyInfo))
	return nil
}

// dial connects to p until it succeeds or ctx is done.
func (c *LocalConn) dial(ctx context.Context, p Party) error {
	dialer := &tls.Dialer{Config: c.tlsConfig}
	for {
		log.Debugf("dial id = %v, addr = %v", p.ID, p.Address)
		conn, err := dialer.DialContext(ctx, "tcp", p.Address)
		if err == nil {
			if !certifies(conn, p.ID) {
				_ = conn.Close()
				return fmt.Errorf("communication: certificate of %s is not issued to it", p.ID)
			}
			if err = writeFrame(conn, []byte(c.LocalConfig.LocalID)); err != nil {
				_ = conn.Close()
				return fmt.Errorf("communication: write local ID to %s: %w", p.ID, err)
			}
			c.add(p.ID, conn)
			log.Infof("successfully connect to %v", p.ID)
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("communication: dial %s: %w", p.ID, err)
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// accept waits for count clients.
func (c *LocalConn) accept(ctx context.Context, count int) error {
	listener := c.listener
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
			_ = listener.Close()
		case <-finished:
		}
	}()
	for accepted := 0; accepted < count; {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("communication: accept: %w", ctx.Err())
			}
			return err
		}
		if deadline, ok := ctx.Deadline(); ok {
			_ = conn.SetReadDeadline(deadline)
		}
		data, err := readFrame(conn)
		_ = conn.SetReadDeadline(time.Time{})
		if err != nil {
			log.Errorln("fail read other party ID")
			_ = conn.Close()
			continue
		}
		id := party.ID(data)
		if !c.expectsClient(id) || !certifies(conn, id) {
			log.Errorf("unexpected connection from %q", id)
			_ = conn.Close()
			continue
		}
		c.add(id, conn)
		accepted++
		log.Infof("successfully connect to %v", id)
	}
	return nil
}

// certifies reports whether the peer certificate of conn is issued to id.
func certifies(conn net.Conn, id party.ID) bool {
	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return false
	}
	certs := tlsConn.ConnectionState().PeerCertificates
	return len(certs) > 0 && certs[0].Subject.CommonName == string(id)
}

func (c *LocalConn) expectsClient(id party.ID) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if _, dup := c.idConnMap[id]; dup {
		return false
	}
	for _, p := range c.LocalConfig.OtherPartyInfo {
		if p.ID == id {
			return p.ConnRole == RoleClient
		}
	}
	return false
}

func (c *LocalConn) add(id party.ID, conn net.Conn) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.idConnMap[id] = &peerConn{conn: conn}
}

func (c *LocalConn) peer(id party.ID) (*peerConn, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	p, ok := c.idConnMap[id]
	return p, ok
}

// P2pSend function is used to send a message to a specific party in a point-to-point manner
func (c *LocalConn) P2pSend(to party.ID, message []byte) error {
	p, ok := c.peer(to)
	if !ok {
		return fmt.Errorf("communication: no connection to %s", to)
	}
	if err := p.write(message); err != nil {
		log.Errorf("fail send message to %v", to)
		return err
	}
	return nil
}

// BroadcastSend function sends a message to each participant individually
func (c *LocalConn) BroadcastSend(message []byte) error {
	var group errgroup.Group
	for _, p := range c.LocalConfig.OtherPartyInfo {
		id := p.ID
		group.Go(func() error { return c.P2pSend(id, message) })
	}
	return group.Wait()
}

// Send delivers msg to its recipients.
func (c *LocalConn) Send(msg *protocol.Message) error {
	data, err := msg.MarshalBinary()
	if err != nil {
		return err
	}
	if msg.To == "" {
		return c.BroadcastSend(data)
	}
	return c.P2pSend(msg.To, data)
}

// HandlerLoop relays messages between h and the peers until the protocol has finished,
// or ctx is cancelled. The result of the execution is given by h.Result().
func (c *LocalConn) HandlerLoop(ctx context.Context, h protocol.Handler) error {
	incoming := make(chan *protocol.Message, 16*(len(c.LocalConfig.OtherPartyInfo)+1))
	done := make(chan struct{})
	defer close(done)

	for _, p := range c.LocalConfig.OtherPartyInfo {
		pc, ok := c.peer(p.ID)
		if !ok {
			return fmt.Errorf("communication: no connection to %s", p.ID)
		}
		go c.receive(p.ID, pc, incoming, done)
	}

	cancelled := ctx.Done()
	for {
		select {
		case msg, ok := <-h.Listen():
			if !ok {
				return nil
			}
			if err := c.Send(msg); err != nil {
				h.Stop()
				return err
			}
		case msg := <-incoming:
			h.Accept(msg)
		case <-cancelled:
			cancelled = nil
			h.Stop()
		}
	}
}

// receive reads the messages of id until the connection is closed.
func (c *LocalConn) receive(id party.ID, pc *peerConn, incoming chan<- *protocol.Message, done <-chan struct{}) {
	for {
		data, err := readFrame(pc.conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.WithField("peer", id).Debugf("stop receiving: %v", err)
			}
			return
		}
		msg := new(protocol.Message)
		if err = msg.UnmarshalBinary(data); err != nil {
			log.WithField("peer", id).Errorf("fail decode message: %v", err)
			continue
		}
		if msg.From != id {
			log.WithField("peer", id).Errorf("message claims to be from %s", msg.From)
			continue
		}
		select {
		case incoming <- msg:
		case <-done:
			return
		}
	}
}

// Close closes every connection and the listener, and returns the first error.
func (c *LocalConn) Close() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	var first error
	for id, p := range c.idConnMap {
		if err := p.conn.Close(); err != nil && first == nil {
			first = err
		}
		delete(c.idConnMap, id)
	}
	if c.listener != nil {
		if err := c.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) && first == nil {
			first = err
		}
		c.listener = nil
	}
	return first
}

// writeFrame writes a 4 byte big endian length followed by data.
func writeFrame(w io.Writer, data []byte) error {
	if len(data) > maxFrame {
		return fmt.Errorf("communication: frame of %d bytes is too large", len(data))
	}
	frame := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(frame, uint32(len(data)))
	copy(frame[4:], data)
	_, err := w.Write(frame)
	return err
}

// readFrame reads a frame written by writeFrame.
func readFrame(r io.Reader) ([]byte, error) {
	var size [4]byte
	if _, err := io.ReadFull(r, size[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(size[:])
	if n > maxFrame {
		return nil, fmt.Errorf("communication: frame of %d bytes is too large", n)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

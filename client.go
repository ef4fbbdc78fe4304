package huddle

import (
	"context"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/logger"
)

// ClientState is the state of the client relative to its server.
type ClientState int

const (
	// StateIdle means client is not running.
	StateIdle ClientState = iota

	// StateDiscovering means client is browsing for servers.
	StateDiscovering

	// StateConnecting means invitation has been sent to the server.
	StateConnecting

	// StateConnected means client is a member of the server session.
	StateConnected

	// StateDisconnected means the link to the server went down.
	StateDisconnected
)

func (s ClientState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiscovering:
		return "discovering"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Client discovers servers and joins one of them.
type Client struct {
	*Session

	mu         sync.RWMutex
	state      ClientState
	serverPeer PeerID
	peers      []PeerID
}

// NewClient creates new client. It panics if config.DisplayName is invalid.
func NewClient(config Config, transport Transport) *Client {
	c := &Client{}
	c.Session = newSession(config, transport, c)
	return c
}

// Run browses for servers and dispatches events until ctx is canceled.
func (c *Client) Run(ctx context.Context) error {
	return c.run(ctx)
}

// Peers returns discovered servers.
func (c *Client) Peers() []PeerID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.peers)
}

// ServerPeer returns the server targeted by the last Connect.
func (c *Client) ServerPeer() (PeerID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.serverPeer, !c.serverPeer.IsZero()
}

// State returns current client state.
func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// Connect sends invitation carrying the handshake request to the server.
// The outcome is reported by ConnectionChanged event.
func (c *Client) Connect(peer PeerID, request HandshakeRequest) error {
	handshake, err := encodeFrame(handshakeFrame(request))
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.serverPeer = peer
	c.state = StateConnecting
	c.mu.Unlock()

	if err := c.transport.Invite(peer, handshake, InviteTimeout); err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		return errors.WithStack(err)
	}
	return nil
}

// Disconnect leaves the session. It is safe to call it many times.
func (c *Client) Disconnect() error {
	return errors.WithStack(c.transport.Disconnect())
}

func (c *Client) start(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateDiscovering
	c.mu.Unlock()

	if err := c.transport.Browse(c.serviceID); err != nil {
		return errors.WithStack(err)
	}

	logger.Get(ctx).Info("Browsing for servers", zap.String("service", c.serviceID))
	return nil
}

func (c *Client) stop(ctx context.Context) {
	if err := c.transport.StopBrowsing(); err != nil {
		logger.Get(ctx).Error("Stopping browsing failed", zap.Error(err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateIdle
	c.serverPeer = PeerID{}
	c.peers = nil
}

func (c *Client) peerFound(ctx context.Context, peer PeerID, metadata map[string]string) {
	log := logger.Get(ctx)

	if metadata[RoleKey] != string(RoleServer) {
		log.Debug("Peer is not a server", zap.Stringer("peer", peer))
		return
	}

	c.mu.Lock()
	if slices.Contains(c.peers, peer) {
		c.mu.Unlock()
		return
	}
	c.peers = append(c.peers, peer)
	c.mu.Unlock()

	log.Info("Server found", zap.Stringer("peer", peer))
	c.emit(PeerFound{Peer: peer, Metadata: metadata})
}

func (c *Client) peerLost(ctx context.Context, peer PeerID) {
	c.mu.Lock()
	n := len(c.peers)
	c.peers = slices.DeleteFunc(c.peers, func(p PeerID) bool {
		return p == peer
	})
	removed := len(c.peers) != n
	c.mu.Unlock()

	if !removed {
		return
	}

	logger.Get(ctx).Info("Server lost", zap.Stringer("peer", peer))
	c.emit(PeerLost{Peer: peer})
}

func (c *Client) invitation(_ PeerID, _ []byte) bool {
	return false
}

func (c *Client) stateChanged(ctx context.Context, peer PeerID, state ConnectionState) {
	log := logger.Get(ctx)

	c.mu.Lock()
	if c.serverPeer.IsZero() || peer != c.serverPeer {
		c.mu.Unlock()
		log.Debug("State change of unrelated peer ignored", zap.Stringer("peer", peer), zap.Stringer("state", state))
		return
	}

	switch state {
	case Connecting:
		c.state = StateConnecting
	case Connected:
		c.state = StateConnected
	case NotConnected:
		c.state = StateDisconnected
	}
	c.mu.Unlock()

	log.Info("Server connection state changed", zap.Stringer("peer", peer), zap.Stringer("state", state))

	switch state {
	case Connected:
		c.emit(ConnectionChanged{Peer: peer, Connected: true})
	case NotConnected:
		c.emit(ConnectionChanged{Peer: peer, Connected: false})
	}
}

func (c *Client) kicked(ctx context.Context, from PeerID, reason string) {
	log := logger.Get(ctx)

	c.mu.RLock()
	serverPeer := c.serverPeer
	c.mu.RUnlock()

	if serverPeer.IsZero() || from != serverPeer {
		log.Warn("Kick from peer other than server ignored", zap.Stringer("peer", from))
		return
	}

	log.Info("Kicked by server", zap.Stringer("peer", from), zap.String("reason", reason))

	if err := c.Disconnect(); err != nil {
		log.Error("Disconnecting failed", zap.Error(err))
	}
	c.emit(Kicked{Peer: from, Reason: reason})
}

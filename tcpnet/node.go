package tcpnet

import (
	"cmp"
	"context"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/huddle"
	"github.com/outofforest/huddle/wire"
	"github.com/outofforest/logger"
	"github.com/outofforest/parallel"
	"github.com/outofforest/resonance"
)

const (
	// DefaultMaxMessageSize is used when Config.MaxMessageSize is zero.
	DefaultMaxMessageSize = 64 * 1024

	// DefaultProbeInterval is used when Config.ProbeInterval is zero.
	DefaultProbeInterval = time.Second

	sendQueueSize   = 64
	inviteQueueSize = 16
)

var (
	// ErrNotOpen is returned when the node is used before Open.
	ErrNotOpen = errors.New("transport is not open")

	// ErrUnknownPeer is returned when the peer has neither been discovered nor connected.
	ErrUnknownPeer = errors.New("unknown peer")

	errSelf = errors.New("connected to myself")
)

// Config is the config of the tcp transport.
type Config struct {
	// Peers are the addresses probed while browsing.
	Peers          []string
	MaxMessageSize uint64
	ProbeInterval  time.Duration
}

type invite struct {
	Peer    huddle.PeerID
	Address string
	Context []byte
	Timeout time.Duration
}

// Node is the huddle transport running over tcp connections.
type Node struct {
	config     Config
	connConfig resonance.Config
	inviteCh   chan invite
	wakeChs    []chan struct{}

	mu         sync.RWMutex
	local      huddle.PeerID
	handler    huddle.TransportHandler
	advertised string
	metadata   []wire.Attribute
	browsed    string
	found      map[string]huddle.PeerID
	links      map[huddle.PeerID]*link
}

// New creates new tcp transport.
func New(config Config) *Node {
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	if config.ProbeInterval == 0 {
		config.ProbeInterval = DefaultProbeInterval
	}

	wakeChs := make([]chan struct{}, 0, len(config.Peers))
	for range config.Peers {
		wakeChs = append(wakeChs, make(chan struct{}, 1))
	}

	return &Node{
		config: config,
		connConfig: resonance.Config{
			MaxMessageSize: config.MaxMessageSize,
		},
		inviteCh: make(chan invite, inviteQueueSize),
		wakeChs:  wakeChs,
		found:    map[string]huddle.PeerID{},
		links:    map[huddle.PeerID]*link{},
	}
}

// Run accepts connections on ls, probes configured peers and establishes invited links.
// ls may be nil if the node only browses.
func (n *Node) Run(ctx context.Context, ls net.Listener) error {
	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		if ls != nil {
			spawn("server", parallel.Fail, func(ctx context.Context) error {
				return resonance.RunServer(ctx, ls, n.connConfig,
					func(ctx context.Context, c *resonance.Connection) error {
						err := n.runInbound(ctx, c)
						if err != nil && ctx.Err() == nil {
							logger.Get(ctx).Debug("Inbound connection closed", zap.Error(err))
						}
						return nil
					})
			})
		}
		for i, address := range n.config.Peers {
			spawn("probe", parallel.Fail, func(ctx context.Context) error {
				return n.runProbes(ctx, address, n.wakeChs[i])
			})
		}
		spawn("inviter", parallel.Fail, func(ctx context.Context) error {
			for {
				var inv invite
				select {
				case <-ctx.Done():
					return errors.WithStack(ctx.Err())
				case inv = <-n.inviteCh:
				}

				spawn("invite", parallel.Continue, func(ctx context.Context) error {
					n.runInvite(ctx, inv)
					return nil
				})
			}
		})

		return nil
	})
}

// Open binds the node to the local peer.
func (n *Node) Open(local huddle.PeerID, handler huddle.TransportHandler) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.handler != nil {
		return errors.New("transport is already open")
	}
	n.local = local
	n.handler = handler
	return nil
}

// Advertise makes the node visible to probes of the service.
func (n *Node) Advertise(serviceID string, metadata map[string]string) error {
	attrs := make([]wire.Attribute, 0, len(metadata))
	for k, v := range metadata {
		attrs = append(attrs, wire.Attribute{Key: k, Value: v})
	}
	slices.SortFunc(attrs, func(a, b wire.Attribute) int {
		return cmp.Compare(a.Key, b.Key)
	})

	n.mu.Lock()
	defer n.mu.Unlock()

	n.advertised = serviceID
	n.metadata = attrs
	return nil
}

// StopAdvertising hides the node from probes.
func (n *Node) StopAdvertising() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.advertised = ""
	n.metadata = nil
	return nil
}

// Browse starts reporting peers advertising the service.
func (n *Node) Browse(serviceID string) error {
	n.mu.Lock()
	n.browsed = serviceID
	n.mu.Unlock()

	for _, ch := range n.wakeChs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// StopBrowsing stops reporting peers and forgets the discovered ones.
func (n *Node) StopBrowsing() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.browsed = ""
	clear(n.found)
	return nil
}

// Invite connects to the discovered peer. The outcome is reported through ConnectionStateChanged.
func (n *Node) Invite(peer huddle.PeerID, context []byte, timeout time.Duration) error {
	n.mu.RLock()
	handler := n.handler
	address, exists := n.address(peer)
	n.mu.RUnlock()

	if handler == nil {
		return errors.WithStack(ErrNotOpen)
	}
	if !exists {
		return errors.Wrapf(ErrUnknownPeer, "peer %q", peer)
	}

	select {
	case n.inviteCh <- invite{Peer: peer, Address: address, Context: context, Timeout: timeout}:
	default:
		return errors.New("too many pending invitations")
	}

	handler.ConnectionStateChanged(peer, huddle.Connecting)
	return nil
}

// Send queues payload for delivery to every peer. It fails if any of them is not connected.
func (n *Node) Send(payload []byte, peers []huddle.PeerID) error {
	n.mu.RLock()
	links := make([]*link, 0, len(peers))
	for _, p := range peers {
		l, exists := n.links[p]
		if !exists {
			n.mu.RUnlock()
			return errors.Wrapf(ErrUnknownPeer, "peer %q is not connected", p)
		}
		links = append(links, l)
	}
	n.mu.RUnlock()

	for _, l := range links {
		if err := l.Send(payload); err != nil {
			return err
		}
	}
	return nil
}

// ConnectedPeers returns peers with established links, ordered by name.
func (n *Node) ConnectedPeers() []huddle.PeerID {
	n.mu.RLock()
	defer n.mu.RUnlock()

	peers := make([]huddle.PeerID, 0, len(n.links))
	for p := range n.links {
		peers = append(peers, p)
	}
	slices.SortFunc(peers, func(a, b huddle.PeerID) int {
		return cmp.Compare(a.DisplayName(), b.DisplayName())
	})
	return peers
}

// Disconnect closes all the links.
func (n *Node) Disconnect() error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, l := range n.links {
		l.Close()
	}
	return nil
}

// Close disconnects and detaches the handler.
func (n *Node) Close() error {
	if err := n.Disconnect(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.handler = nil
	n.advertised = ""
	n.metadata = nil
	n.browsed = ""
	clear(n.found)
	return nil
}

func (n *Node) address(peer huddle.PeerID) (string, bool) {
	for address, p := range n.found {
		if p == peer {
			return address, true
		}
	}
	return "", false
}

func (n *Node) hello() (*wire.Hello, huddle.TransportHandler) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return &wire.Hello{
		PeerName:    n.local.DisplayName(),
		ServiceID:   n.advertised,
		Advertising: n.advertised != "",
		Metadata:    n.metadata,
	}, n.handler
}

// exchangeHellos sends local hello and returns the remote one.
func (n *Node) exchangeHellos(c *resonance.Connection, m wire.Marshaller) (*wire.Hello, huddle.PeerID, error) {
	local, handler := n.hello()
	if handler == nil {
		return nil, huddle.PeerID{}, errors.WithStack(ErrNotOpen)
	}

	if err := c.SendProton(local, m); err != nil {
		return nil, huddle.PeerID{}, err
	}

	msg, err := c.ReceiveProton(m)
	if err != nil {
		return nil, huddle.PeerID{}, err
	}

	remote, ok := msg.(*wire.Hello)
	if !ok {
		return nil, huddle.PeerID{}, errors.New("hello message expected")
	}
	if remote.PeerName == local.PeerName {
		return nil, huddle.PeerID{}, errSelf
	}

	peer, err := huddle.NewPeerID(remote.PeerName)
	if err != nil {
		return nil, huddle.PeerID{}, err
	}
	return remote, peer, nil
}

func (n *Node) runInbound(ctx context.Context, c *resonance.Connection) error {
	m := wire.NewMarshaller()

	_, peer, err := n.exchangeHellos(c, m)
	if err != nil {
		return err
	}

	// Probes close the connection right after the hello exchange.
	msg, err := c.ReceiveProton(m)
	if err != nil {
		return err
	}

	inv, ok := msg.(*wire.Invite)
	if !ok {
		return errors.New("invite message expected")
	}

	n.mu.RLock()
	handler := n.handler
	advertising := n.advertised != ""
	n.mu.RUnlock()

	accepted := advertising && handler != nil && handler.InvitationReceived(peer, inv.Context)
	if err := c.SendProton(&wire.InviteReply{Accepted: accepted}, m); err != nil {
		return err
	}
	if !accepted {
		logger.Get(ctx).Debug("Invitation declined", zap.Stringer("peer", peer))
		return nil
	}

	return n.runLink(ctx, c, m, peer, handler)
}

func (n *Node) runInvite(ctx context.Context, inv invite) {
	log := logger.Get(ctx).With(zap.Stringer("peer", inv.Peer), zap.String("address", inv.Address))

	var handler huddle.TransportHandler
	linked := false
	err := resonance.RunClient(ctx, inv.Address, n.connConfig,
		func(ctx context.Context, c *resonance.Connection) error {
			m := wire.NewMarshaller()

			timer := time.AfterFunc(inv.Timeout, func() { c.Close() })
			_, peer, err := n.exchangeHellos(c, m)
			if err != nil {
				timer.Stop()
				return err
			}
			if peer != inv.Peer {
				timer.Stop()
				return errors.Errorf("peer %q found at the address", peer)
			}

			if err := c.SendProton(&wire.Invite{Context: inv.Context}, m); err != nil {
				timer.Stop()
				return err
			}

			msg, err := c.ReceiveProton(m)
			if !timer.Stop() {
				return errors.New("invitation timed out")
			}
			if err != nil {
				return err
			}

			reply, ok := msg.(*wire.InviteReply)
			if !ok {
				return errors.New("invite reply expected")
			}
			if !reply.Accepted {
				return errors.New("invitation declined")
			}

			n.mu.RLock()
			handler = n.handler
			n.mu.RUnlock()
			if handler == nil {
				return errors.WithStack(ErrNotOpen)
			}

			linked = true
			return n.runLink(ctx, c, m, peer, handler)
		})

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Debug("Link closed", zap.Error(err))
	}

	if !linked {
		// Link teardown reports NotConnected itself.
		n.mu.RLock()
		handler = n.handler
		n.mu.RUnlock()
		if handler != nil {
			handler.ConnectionStateChanged(inv.Peer, huddle.NotConnected)
		}
	}
}

func (n *Node) runLink(
	ctx context.Context,
	c *resonance.Connection,
	m wire.Marshaller,
	peer huddle.PeerID,
	handler huddle.TransportHandler,
) error {
	l := newLink()

	n.mu.Lock()
	if old, exists := n.links[peer]; exists {
		old.Close()
	}
	n.links[peer] = l
	n.mu.Unlock()

	logger.Get(ctx).Info("Link established", zap.Stringer("peer", peer))
	handler.ConnectionStateChanged(peer, huddle.Connected)

	defer func() {
		n.mu.Lock()
		if n.links[peer] == l {
			delete(n.links, peer)
		}
		n.mu.Unlock()

		logger.Get(ctx).Info("Link closed", zap.Stringer("peer", peer))
		handler.ConnectionStateChanged(peer, huddle.NotConnected)
	}()

	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("receiver", parallel.Fail, func(ctx context.Context) error {
			defer l.Close()

			for {
				msg, err := c.ReceiveProton(m)
				if err != nil {
					return err
				}

				data, ok := msg.(*wire.Data)
				if !ok {
					return errors.New("data message expected")
				}

				handler.DataReceived(data.Payload, peer)
			}
		})
		spawn("sender", parallel.Fail, func(ctx context.Context) error {
			defer c.Close()
			return l.Run(ctx, func(payload []byte) error {
				return c.SendProton(&wire.Data{Payload: payload}, m)
			})
		})

		return nil
	})
}

func (n *Node) runProbes(ctx context.Context, address string, wakeCh <-chan struct{}) error {
	for {
		n.probe(ctx, address)

		select {
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		case <-wakeCh:
		case <-time.After(n.config.ProbeInterval):
		}
	}
}

func (n *Node) probe(ctx context.Context, address string) {
	n.mu.RLock()
	serviceID := n.browsed
	handler := n.handler
	n.mu.RUnlock()

	if serviceID == "" || handler == nil {
		return
	}

	var found *huddle.PeerID
	var metadata map[string]string
	err := resonance.RunClient(ctx, address, n.connConfig,
		func(ctx context.Context, c *resonance.Connection) error {
			timer := time.AfterFunc(n.config.ProbeInterval, func() { c.Close() })
			defer timer.Stop()
			defer c.Close()

			remote, peer, err := n.exchangeHellos(c, wire.NewMarshaller())
			if err != nil {
				return err
			}

			if remote.Advertising && remote.ServiceID == serviceID {
				found = &peer
				metadata = make(map[string]string, len(remote.Metadata))
				for _, a := range remote.Metadata {
					metadata[a.Key] = a.Value
				}
			}
			return nil
		})
	if err != nil && found == nil && ctx.Err() == nil && !errors.Is(err, errSelf) {
		logger.Get(ctx).Debug("Probe failed", zap.String("address", address), zap.Error(err))
	}

	n.mu.Lock()
	if n.browsed != serviceID {
		n.mu.Unlock()
		return
	}
	previous, existed := n.found[address]
	if found != nil {
		n.found[address] = *found
	} else {
		delete(n.found, address)
	}
	n.mu.Unlock()

	if existed && (found == nil || *found != previous) {
		handler.PeerLost(previous)
	}
	if found != nil && (!existed || *found != previous) {
		handler.PeerFound(*found, metadata)
	}
}

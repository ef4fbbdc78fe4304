package huddle

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/huddle/internal/mailbox"
	"github.com/outofforest/huddle/wire"
	"github.com/outofforest/logger"
	"github.com/outofforest/parallel"
)

// Coordinator is implemented by Client and Server.
type Coordinator interface {
	session() *Session
}

// role is the behaviour specific to client or server.
type role interface {
	start(ctx context.Context) error
	stop(ctx context.Context)
	peerFound(ctx context.Context, peer PeerID, metadata map[string]string)
	peerLost(ctx context.Context, peer PeerID)

	// invitation is called on the transport goroutine and must not block.
	invitation(peer PeerID, handshake []byte) bool
	stateChanged(ctx context.Context, peer PeerID, state ConnectionState)
	kicked(ctx context.Context, from PeerID, reason string)
}

type deliverFunc func(ctx context.Context, frame any, from PeerID)

// Session is the part shared by client and server: sending, typed subscriptions and event observers.
// Subscriptions and observers are invoked on a single goroutine, in the order events were emitted by the transport.
type Session struct {
	local     PeerID
	serviceID string
	transport Transport
	role      role

	subscriptions *registry[deliverFunc]
	observers     *registry[func(Event)]
	mailbox       *mailbox.Mailbox
	running       atomic.Bool
}

// newSession panics if the local display name is invalid.
func newSession(config Config, transport Transport, role role) *Session {
	local, err := NewPeerID(config.DisplayName)
	if err != nil {
		panic(err)
	}

	return &Session{
		local:         local,
		serviceID:     config.serviceID(),
		transport:     transport,
		role:          role,
		subscriptions: newRegistry[deliverFunc](),
		observers:     newRegistry[func(Event)](),
		mailbox:       mailbox.New(),
	}
}

func (s *Session) session() *Session {
	return s
}

// LocalPeer returns the identity of this peer.
func (s *Session) LocalPeer() PeerID {
	return s.local
}

// ServiceID returns the service advertised or browsed.
func (s *Session) ServiceID() string {
	return s.serviceID
}

// ConnectedPeers returns peers currently connected according to the transport.
func (s *Session) ConnectedPeers() []PeerID {
	return s.transport.ConnectedPeers()
}

// Send wraps content into new envelope and sends it to peers, or to all connected peers if none is given.
func (s *Session) Send(content any, peers ...PeerID) error {
	return SendEnvelope(s, NewEnvelope(content), peers...)
}

// SendRaw sends content without envelope metadata.
func (s *Session) SendRaw(content any, peers ...PeerID) error {
	peers, err := s.resolvePeers(peers)
	if err != nil {
		return err
	}
	frame, err := rawFrame(content)
	if err != nil {
		return err
	}
	return s.sendFrame(frame, peers)
}

// SendEnvelope sends envelope built by the caller.
func SendEnvelope[T any](c Coordinator, env Envelope[T], peers ...PeerID) error {
	s := c.session()

	peers, err := s.resolvePeers(peers)
	if err != nil {
		return err
	}
	frame, err := envelopeFrame(env)
	if err != nil {
		return err
	}
	return s.sendFrame(frame, peers)
}

// Subscribe registers fn for every received envelope whose content decodes into T.
func Subscribe[T any](c Coordinator, fn func(env Envelope[T], from PeerID)) uuid.UUID {
	return c.session().subscriptions.Add(func(ctx context.Context, frame any, from PeerID) {
		env, err := envelopeFromFrame[T](frame)
		if err != nil {
			logger.Get(ctx).Debug("Payload skipped by subscription", zap.Stringer("from", from), zap.Error(err))
			return
		}
		fn(env, from)
	})
}

// SubscribeRaw registers fn for every received raw object decoding into T.
func SubscribeRaw[T any](c Coordinator, fn func(content T, from PeerID)) uuid.UUID {
	return c.session().subscriptions.Add(func(ctx context.Context, frame any, from PeerID) {
		content, err := rawFromFrame[T](frame)
		if err != nil {
			logger.Get(ctx).Debug("Payload skipped by subscription", zap.Stringer("from", from), zap.Error(err))
			return
		}
		fn(content, from)
	})
}

// Observe registers fn for coordinator events.
func (s *Session) Observe(fn func(event Event)) uuid.UUID {
	return s.observers.Add(fn)
}

// Unsubscribe removes subscription or observer. Unknown ids are ignored.
// Called from a subscription or observer, it takes effect before the next handler runs. Called from another
// goroutine while an event is being dispatched, the removed handler may still receive that event.
func (s *Session) Unsubscribe(id uuid.UUID) {
	if !s.subscriptions.Remove(id) {
		s.observers.Remove(id)
	}
}

func (s *Session) resolvePeers(peers []PeerID) ([]PeerID, error) {
	if len(peers) == 0 {
		peers = s.transport.ConnectedPeers()
	}
	if len(peers) == 0 {
		return nil, errors.WithStack(ErrNoPeersConnected)
	}
	return peers, nil
}

func (s *Session) sendFrame(frame any, peers []PeerID) error {
	payload, err := encodeFrame(frame)
	if err != nil {
		return err
	}
	if err := s.transport.Send(payload, peers); err != nil {
		return sendError(err)
	}
	return nil
}

func (s *Session) emit(event Event) {
	s.observers.Each(func(fn func(Event)) {
		fn(event)
	})
}

func (s *Session) receive(ctx context.Context, payload []byte, from PeerID) {
	frame, err := decodeFrame(payload)
	if err == nil {
		if kick, ok := frame.(*wire.Kick); ok {
			s.role.kicked(ctx, from, kick.Reason)
			return
		}
	}

	s.emit(DataReceived{Peer: from, Payload: payload})

	if err != nil {
		logger.Get(ctx).Warn("Malformed payload received", zap.Stringer("from", from), zap.Error(err))
		return
	}

	s.subscriptions.Each(func(deliver deliverFunc) {
		deliver(ctx, frame, from)
	})
}

func (s *Session) run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.WithStack(ErrAlreadyRunning)
	}
	defer s.running.Store(false)

	log := logger.Get(ctx).With(zap.Stringer("local", s.local))
	ctx = logger.WithLogger(ctx, log)

	if err := s.transport.Open(s.local, transportEvents{session: s}); err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		if err := s.transport.Close(); err != nil {
			log.Error("Closing transport failed", zap.Error(err))
		}
		s.mailbox.Reset()
	}()

	if err := s.role.start(ctx); err != nil {
		return err
	}
	defer s.role.stop(ctx)

	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("dispatcher", parallel.Fail, s.mailbox.Run)
		return nil
	})
}

// transportEvents moves transport callbacks onto the session mailbox.
type transportEvents struct {
	session *Session
}

func (e transportEvents) PeerFound(peer PeerID, metadata map[string]string) {
	e.session.mailbox.Push(func(ctx context.Context) {
		e.session.role.peerFound(ctx, peer, metadata)
	})
}

func (e transportEvents) PeerLost(peer PeerID) {
	e.session.mailbox.Push(func(ctx context.Context) {
		e.session.role.peerLost(ctx, peer)
	})
}

func (e transportEvents) InvitationReceived(peer PeerID, handshake []byte) bool {
	return e.session.role.invitation(peer, handshake)
}

func (e transportEvents) DataReceived(payload []byte, from PeerID) {
	e.session.mailbox.Push(func(ctx context.Context) {
		e.session.receive(ctx, payload, from)
	})
}

func (e transportEvents) ConnectionStateChanged(peer PeerID, state ConnectionState) {
	e.session.mailbox.Push(func(ctx context.Context) {
		e.session.role.stateChanged(ctx, peer, state)
	})
}

package huddle

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/logger"
)

// Server advertises the session and admits clients.
type Server struct {
	*Session

	admission      AdmissionPolicy
	legacyVersions []string

	mu           sync.RWMutex
	clients      []PeerID
	pendingKicks map[PeerID]string
}

// NewServer creates new server. It panics if config.DisplayName is invalid.
func NewServer(config ServerConfig, transport Transport) *Server {
	s := &Server{
		admission:      config.Admission,
		legacyVersions: slices.Clone(config.LegacyVersions),
		pendingKicks:   map[PeerID]string{},
	}
	s.Session = newSession(config.Config, transport, s)
	return s
}

// Run advertises the server and dispatches events until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.run(ctx)
}

// ConnectedClients returns clients currently in the session.
func (s *Server) ConnectedClients() []PeerID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.clients)
}

// PendingKicks returns rejected peers waiting to be kicked once their connection is confirmed.
func (s *Server) PendingKicks() map[PeerID]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.pendingKicks)
}

// KickPeer sends kick to the connected peer.
func (s *Server) KickPeer(peer PeerID, reason string) error {
	return s.KickPeers([]PeerID{peer}, reason)
}

// KickPeers sends kick to the connected peers.
func (s *Server) KickPeers(peers []PeerID, reason string) error {
	if len(peers) == 0 {
		return errors.WithStack(ErrNoPeersConnected)
	}
	return s.sendFrame(kickFrame(reason), peers)
}

func (s *Server) start(ctx context.Context) error {
	if err := s.transport.Advertise(s.serviceID, RoleServer.Metadata()); err != nil {
		return errors.WithStack(err)
	}

	logger.Get(ctx).Info("Advertising server", zap.String("service", s.serviceID))
	return nil
}

func (s *Server) stop(ctx context.Context) {
	if err := s.transport.StopAdvertising(); err != nil {
		logger.Get(ctx).Error("Stopping advertising failed", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients = nil
	clear(s.pendingKicks)
}

func (s *Server) peerFound(ctx context.Context, peer PeerID, _ map[string]string) {
	logger.Get(ctx).Debug("Server does not browse, found peer ignored", zap.Stringer("peer", peer))
}

func (s *Server) peerLost(ctx context.Context, peer PeerID) {
	logger.Get(ctx).Debug("Server does not browse, lost peer ignored", zap.Stringer("peer", peer))
}

func (s *Server) invitation(peer PeerID, handshake []byte) bool {
	if s.admission == nil && len(s.legacyVersions) > 0 {
		version, ok := peer.Version()
		if !ok || !slices.Contains(s.legacyVersions, version) {
			s.mailbox.Push(func(ctx context.Context) {
				logger.Get(ctx).Info("Invitation rejected, version is not allowed",
					zap.Stringer("peer", peer), zap.String("version", version))
				s.emit(PeerRejected{Peer: peer})
			})
			return false
		}
	}

	s.mailbox.Push(func(ctx context.Context) {
		logger.Get(ctx).Info("Invitation received", zap.Stringer("peer", peer))
		s.admit(ctx, peer, handshake)
	})
	return true
}

func (s *Server) admit(ctx context.Context, peer PeerID, handshake []byte) {
	if s.admission == nil || len(handshake) == 0 {
		return
	}

	log := logger.Get(ctx)

	request, err := handshakeFromContext(handshake)
	if err != nil {
		log.Debug("Invitation carries no handshake request", zap.Stringer("peer", peer), zap.Error(err))
		return
	}

	response := s.admission(peer, request)
	if response.Allowed {
		log.Info("Peer admitted", zap.Stringer("peer", peer))
		return
	}

	// The link may not be confirmed yet, then the kick waits for the peer to become connected.
	s.mu.Lock()
	connected := slices.Contains(s.clients, peer)
	if !connected {
		s.pendingKicks[peer] = response.Reason
	}
	s.mu.Unlock()

	log.Info("Peer rejected", zap.Stringer("peer", peer), zap.String("reason", response.Reason))
	s.emit(PeerRejected{Peer: peer, Reason: response.Reason})

	if connected {
		s.kick(ctx, peer, response.Reason)
	}
}

func (s *Server) stateChanged(ctx context.Context, peer PeerID, state ConnectionState) {
	log := logger.Get(ctx)
	log.Info("Client connection state changed", zap.Stringer("peer", peer), zap.Stringer("state", state))

	switch state {
	case Connected:
		s.mu.Lock()
		added := !slices.Contains(s.clients, peer)
		if added {
			s.clients = append(s.clients, peer)
		}
		s.mu.Unlock()

		if added {
			s.emit(PeerConnected{Peer: peer})
		}

		s.mu.Lock()
		reason, pending := s.pendingKicks[peer]
		delete(s.pendingKicks, peer)
		s.mu.Unlock()

		if pending {
			s.kick(ctx, peer, reason)
		}
	case NotConnected:
		s.mu.Lock()
		s.clients = slices.DeleteFunc(s.clients, func(p PeerID) bool {
			return p == peer
		})
		// Rejection expires with the link, reconnecting peer goes through admission again.
		delete(s.pendingKicks, peer)
		s.mu.Unlock()

		s.emit(PeerDisconnected{Peer: peer})
	}
}

func (s *Server) kicked(ctx context.Context, from PeerID, _ string) {
	logger.Get(ctx).Warn("Kick received by server ignored", zap.Stringer("peer", from))
}

func (s *Server) kick(ctx context.Context, peer PeerID, reason string) {
	log := logger.Get(ctx)
	if err := s.KickPeer(peer, reason); err != nil {
		log.Error("Kicking peer failed", zap.Stringer("peer", peer), zap.Error(err))
		return
	}
	log.Info("Peer kicked", zap.Stringer("peer", peer), zap.String("reason", reason))
}

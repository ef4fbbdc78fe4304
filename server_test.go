package huddle_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/huddle"
	"github.com/outofforest/huddle/wire"
)

func handshake(requireT *require.Assertions, appVersion string) []byte {
	payload, err := wire.Encode(&wire.HandshakeRequest{
		DeviceDetails: "phone",
		AppVersion:    appVersion,
	})
	requireT.NoError(err)
	return payload
}

func requireVersion(version string) huddle.AdmissionPolicy {
	return func(peer huddle.PeerID, request huddle.HandshakeRequest) huddle.HandshakeResponse {
		if request.AppVersion != version {
			return huddle.HandshakeResponse{Reason: "version " + version + " is required"}
		}
		return huddle.HandshakeResponse{Allowed: true}
	}
}

func newServer(config huddle.ServerConfig) (*huddle.Server, *fakeTransport) {
	config.DisplayName = "host"
	tr := newFakeTransport()
	return huddle.NewServer(config, tr), tr
}

func TestServerAdvertisesRole(t *testing.T) {
	requireT := require.New(t)

	server, tr := newServer(huddle.ServerConfig{})
	ctx, events := start(t, server)
	flush(ctx, requireT, tr.Handler(requireT), events)

	tr.mu.Lock()
	defer tr.mu.Unlock()

	requireT.Equal(huddle.DefaultServiceID, tr.serviceID)
	requireT.Equal(map[string]string{"role": "server"}, tr.advertised)
}

func TestServerTracksConnectedClients(t *testing.T) {
	requireT := require.New(t)

	server, tr := newServer(huddle.ServerConfig{})
	ctx, events := start(t, server)
	handler := tr.Handler(requireT)

	handler.ConnectionStateChanged(alice, huddle.Connecting)
	handler.ConnectionStateChanged(alice, huddle.Connected)
	handler.ConnectionStateChanged(bob, huddle.Connected)
	handler.ConnectionStateChanged(alice, huddle.Connected)

	requireT.Equal([]huddle.Event{
		huddle.PeerConnected{Peer: alice},
		huddle.PeerConnected{Peer: bob},
	}, flush(ctx, requireT, handler, events))
	requireT.Equal([]huddle.PeerID{alice, bob}, server.ConnectedClients())

	handler.ConnectionStateChanged(alice, huddle.NotConnected)
	requireT.Equal([]huddle.Event{
		huddle.PeerDisconnected{Peer: alice},
	}, flush(ctx, requireT, handler, events))
	requireT.Equal([]huddle.PeerID{bob}, server.ConnectedClients())
}

func TestInvitationWithoutContextIsAccepted(t *testing.T) {
	requireT := require.New(t)

	var evaluated int
	server, tr := newServer(huddle.ServerConfig{
		Admission: func(peer huddle.PeerID, request huddle.HandshakeRequest) huddle.HandshakeResponse {
			evaluated++
			return huddle.HandshakeResponse{}
		},
	})
	ctx, events := start(t, server)
	handler := tr.Handler(requireT)

	requireT.True(handler.InvitationReceived(alice, nil))
	requireT.True(handler.InvitationReceived(bob, []byte{0xff, 0x01}))
	requireT.True(handler.InvitationReceived(carol, kickPayload(requireT, "not a handshake")))

	handler.ConnectionStateChanged(alice, huddle.Connected)
	handler.ConnectionStateChanged(bob, huddle.Connected)
	handler.ConnectionStateChanged(carol, huddle.Connected)

	requireT.Equal([]huddle.Event{
		huddle.PeerConnected{Peer: alice},
		huddle.PeerConnected{Peer: bob},
		huddle.PeerConnected{Peer: carol},
	}, flush(ctx, requireT, handler, events))
	requireT.Zero(evaluated)
	requireT.Empty(server.PendingKicks())
	requireT.Empty(tr.sentCh)
}

func TestAdmittedPeerIsNotKicked(t *testing.T) {
	requireT := require.New(t)

	server, tr := newServer(huddle.ServerConfig{Admission: requireVersion("2.0")})
	ctx, events := start(t, server)
	handler := tr.Handler(requireT)

	requireT.True(handler.InvitationReceived(alice, handshake(requireT, "2.0")))
	handler.ConnectionStateChanged(alice, huddle.Connected)

	requireT.Equal([]huddle.Event{
		huddle.PeerConnected{Peer: alice},
	}, flush(ctx, requireT, handler, events))
	requireT.Empty(tr.sentCh)
}

func TestRejectedPeerIsKickedOnceConnected(t *testing.T) {
	requireT := require.New(t)

	server, tr := newServer(huddle.ServerConfig{Admission: requireVersion("2.0")})
	ctx, events := start(t, server)
	handler := tr.Handler(requireT)

	requireT.True(handler.InvitationReceived(alice, handshake(requireT, "1.0")))
	requireT.Equal([]huddle.Event{
		huddle.PeerRejected{Peer: alice, Reason: "version 2.0 is required"},
	}, flush(ctx, requireT, handler, events))
	requireT.Equal(map[huddle.PeerID]string{alice: "version 2.0 is required"}, server.PendingKicks())
	requireT.Empty(tr.sentCh)

	handler.ConnectionStateChanged(alice, huddle.Connecting)
	handler.ConnectionStateChanged(alice, huddle.Connected)
	requireT.Equal([]huddle.Event{
		huddle.PeerConnected{Peer: alice},
	}, flush(ctx, requireT, handler, events))

	sent := nextSent(requireT, tr.sentCh)
	requireT.Equal([]huddle.PeerID{alice}, sent.Peers)
	requireT.Equal("version 2.0 is required", decodeKick(requireT, sent.Payload).Reason)
	requireT.Empty(server.PendingKicks())

	// Kick is delivered only once.
	handler.ConnectionStateChanged(alice, huddle.Connected)
	requireT.Empty(flush(ctx, requireT, handler, events))
	requireT.Empty(tr.sentCh)
}

func TestRejectionOfConnectedPeerKicksImmediately(t *testing.T) {
	requireT := require.New(t)

	server, tr := newServer(huddle.ServerConfig{Admission: requireVersion("2.0")})
	ctx, events := start(t, server)
	handler := tr.Handler(requireT)

	handler.ConnectionStateChanged(alice, huddle.Connected)
	requireT.True(handler.InvitationReceived(alice, handshake(requireT, "1.0")))

	requireT.Equal([]huddle.Event{
		huddle.PeerConnected{Peer: alice},
		huddle.PeerRejected{Peer: alice, Reason: "version 2.0 is required"},
	}, flush(ctx, requireT, handler, events))

	sent := nextSent(requireT, tr.sentCh)
	requireT.Equal([]huddle.PeerID{alice}, sent.Peers)
	requireT.Equal("version 2.0 is required", decodeKick(requireT, sent.Payload).Reason)
	requireT.Empty(server.PendingKicks())
}

func TestPendingKickExpiresOnDisconnect(t *testing.T) {
	requireT := require.New(t)

	server, tr := newServer(huddle.ServerConfig{Admission: requireVersion("2.0")})
	ctx, events := start(t, server)
	handler := tr.Handler(requireT)

	requireT.True(handler.InvitationReceived(alice, handshake(requireT, "1.0")))
	handler.ConnectionStateChanged(alice, huddle.NotConnected)
	requireT.Equal([]huddle.Event{
		huddle.PeerRejected{Peer: alice, Reason: "version 2.0 is required"},
		huddle.PeerDisconnected{Peer: alice},
	}, flush(ctx, requireT, handler, events))
	requireT.Empty(server.PendingKicks())

	requireT.True(handler.InvitationReceived(alice, handshake(requireT, "2.0")))
	handler.ConnectionStateChanged(alice, huddle.Connected)
	requireT.Equal([]huddle.Event{
		huddle.PeerConnected{Peer: alice},
	}, flush(ctx, requireT, handler, events))
	requireT.Empty(tr.sentCh)
}

func TestLegacyVersionGating(t *testing.T) {
	requireT := require.New(t)

	server, tr := newServer(huddle.ServerConfig{LegacyVersions: []string{"1.0", "1.1"}})
	ctx, events := start(t, server)
	handler := tr.Handler(requireT)

	erin := huddle.MustPeerID("erin [v1.1]")
	dave := huddle.MustPeerID("dave [v2.0]")

	requireT.True(handler.InvitationReceived(erin, nil))
	requireT.False(handler.InvitationReceived(dave, handshake(requireT, "1.1")))
	requireT.False(handler.InvitationReceived(alice, nil))

	requireT.Equal([]huddle.Event{
		huddle.PeerRejected{Peer: dave},
		huddle.PeerRejected{Peer: alice},
	}, flush(ctx, requireT, handler, events))
	requireT.Empty(server.PendingKicks())
}

func TestPolicyTakesPrecedenceOverLegacyVersions(t *testing.T) {
	requireT := require.New(t)

	server, tr := newServer(huddle.ServerConfig{
		Admission:      requireVersion("2.0"),
		LegacyVersions: []string{"1.0"},
	})
	ctx, events := start(t, server)
	handler := tr.Handler(requireT)

	requireT.True(handler.InvitationReceived(huddle.MustPeerID("dave [v2.0]"), handshake(requireT, "2.0")))
	requireT.Empty(flush(ctx, requireT, handler, events))
}

func TestKickPeers(t *testing.T) {
	requireT := require.New(t)

	server, tr := newServer(huddle.ServerConfig{})

	requireT.NoError(server.KickPeer(alice, ""))
	sent := nextSent(requireT, tr.sentCh)
	requireT.Equal([]huddle.PeerID{alice}, sent.Peers)
	requireT.Empty(decodeKick(requireT, sent.Payload).Reason)

	requireT.NoError(server.KickPeers([]huddle.PeerID{alice, bob}, "closing"))
	sent = nextSent(requireT, tr.sentCh)
	requireT.Equal([]huddle.PeerID{alice, bob}, sent.Peers)
	requireT.Equal("closing", decodeKick(requireT, sent.Payload).Reason)

	tr.connected = []huddle.PeerID{alice}
	requireT.True(errors.Is(server.KickPeers(nil, "nobody"), huddle.ErrNoPeersConnected))
	requireT.Empty(tr.sentCh)
}

func TestServerIgnoresKick(t *testing.T) {
	requireT := require.New(t)

	server, tr := newServer(huddle.ServerConfig{})
	ctx, events := start(t, server)
	handler := tr.Handler(requireT)

	handler.DataReceived(kickPayload(requireT, "bye"), alice)
	requireT.Empty(flush(ctx, requireT, handler, events))
	requireT.Zero(tr.Disconnects())
}

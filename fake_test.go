package huddle_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/huddle"
	"github.com/outofforest/huddle/wire"
	"github.com/outofforest/parallel"
	"github.com/outofforest/qa"
)

type sentPayload struct {
	Payload []byte
	Peers   []huddle.PeerID
}

type invitation struct {
	Peer    huddle.PeerID
	Context []byte
	Timeout time.Duration
}

type fakeTransport struct {
	openCh chan struct{}
	sentCh chan sentPayload

	mu          sync.Mutex
	handler     huddle.TransportHandler
	serviceID   string
	advertised  map[string]string
	browsing    bool
	connected   []huddle.PeerID
	invitations []invitation
	disconnects int
	sendErr     error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		openCh: make(chan struct{}),
		sentCh: make(chan sentPayload, 100),
	}
}

func (t *fakeTransport) Open(_ huddle.PeerID, handler huddle.TransportHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.handler = handler
	close(t.openCh)
	return nil
}

func (t *fakeTransport) Advertise(serviceID string, metadata map[string]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.serviceID = serviceID
	t.advertised = metadata
	return nil
}

func (t *fakeTransport) StopAdvertising() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.advertised = nil
	return nil
}

func (t *fakeTransport) Browse(serviceID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.serviceID = serviceID
	t.browsing = true
	return nil
}

func (t *fakeTransport) StopBrowsing() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.browsing = false
	return nil
}

func (t *fakeTransport) Invite(peer huddle.PeerID, context []byte, timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.invitations = append(t.invitations, invitation{Peer: peer, Context: context, Timeout: timeout})
	return nil
}

func (t *fakeTransport) Send(payload []byte, peers []huddle.PeerID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sendErr != nil {
		return t.sendErr
	}
	t.sentCh <- sentPayload{Payload: payload, Peers: slices.Clone(peers)}
	return nil
}

func (t *fakeTransport) ConnectedPeers() []huddle.PeerID {
	t.mu.Lock()
	defer t.mu.Unlock()

	return slices.Clone(t.connected)
}

func (t *fakeTransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.disconnects++
	return nil
}

func (t *fakeTransport) Close() error {
	return nil
}

func (t *fakeTransport) Handler(requireT *require.Assertions) huddle.TransportHandler {
	select {
	case <-time.After(5 * time.Second):
		requireT.Fail("transport has not been opened")
	case <-t.openCh:
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.handler
}

func (t *fakeTransport) Disconnects() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.disconnects
}

type chat struct {
	Text string
}

type score struct {
	Points int
}

var (
	alice = huddle.MustPeerID("alice")
	bob   = huddle.MustPeerID("bob")
	carol = huddle.MustPeerID("carol")
	host  = huddle.MustPeerID("host")

	flusher = huddle.MustPeerID("flusher")

	serverMeta = map[string]string{huddle.RoleKey: "server"}
)

// start runs the coordinator in the test group and returns the stream of its events.
func start(
	t *testing.T,
	coordinator interface {
		Run(ctx context.Context) error
		Observe(fn func(event huddle.Event)) uuid.UUID
	},
) (context.Context, <-chan huddle.Event) {
	requireT := require.New(t)

	ctx := qa.NewContext(t)
	group := qa.NewGroup(ctx, t)
	t.Cleanup(func() {
		group.Exit(nil)
		requireT.NoError(group.Wait())
	})

	events := make(chan huddle.Event, 100)
	coordinator.Observe(func(event huddle.Event) {
		events <- event
	})

	group.Spawn("coordinator", parallel.Fail, coordinator.Run)
	return ctx, events
}

func nextEvent(ctx context.Context, requireT *require.Assertions, events <-chan huddle.Event) huddle.Event {
	select {
	case <-ctx.Done():
		requireT.Fail("context canceled")
	case <-time.After(5 * time.Second):
		requireT.Fail("timeout")
	case event := <-events:
		return event
	}
	return nil
}

// flush waits until everything injected before has been processed by the dispatcher.
// Events other than the marker are returned in order.
func flush(
	ctx context.Context,
	requireT *require.Assertions,
	handler huddle.TransportHandler,
	events <-chan huddle.Event,
) []huddle.Event {
	marker, err := huddle.EncodeRaw("flush")
	requireT.NoError(err)

	handler.DataReceived(marker, flusher)

	var received []huddle.Event
	for {
		event := nextEvent(ctx, requireT, events)
		if e, ok := event.(huddle.DataReceived); ok && slices.Equal(e.Payload, marker) {
			return received
		}
		received = append(received, event)
	}
}

func nextSent(requireT *require.Assertions, sentCh <-chan sentPayload) sentPayload {
	select {
	case <-time.After(5 * time.Second):
		requireT.Fail("timeout")
	case sent := <-sentCh:
		return sent
	}
	return sentPayload{}
}

func decodeKick(requireT *require.Assertions, payload []byte) *wire.Kick {
	frame, err := wire.Decode(payload)
	requireT.NoError(err)
	kick, ok := frame.(*wire.Kick)
	requireT.True(ok)
	return kick
}

func kickPayload(requireT *require.Assertions, reason string) []byte {
	payload, err := wire.Encode(&wire.Kick{Reason: reason})
	requireT.NoError(err)
	return payload
}

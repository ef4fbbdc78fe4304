package huddle

import "time"

// ConnectionState is the state of the link to a peer as reported by the transport.
type ConnectionState int

const (
	// NotConnected means there is no link to the peer.
	NotConnected ConnectionState = iota

	// Connecting means the link is being established.
	Connecting

	// Connected means payloads may be delivered to the peer.
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case NotConnected:
		return "notConnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// TransportHandler receives transport events. Methods may be called from any goroutine.
type TransportHandler interface {
	PeerFound(peer PeerID, metadata map[string]string)
	PeerLost(peer PeerID)

	// InvitationReceived returns the transport-level accept decision.
	InvitationReceived(peer PeerID, context []byte) bool

	DataReceived(payload []byte, from PeerID)
	ConnectionStateChanged(peer PeerID, state ConnectionState)
}

// Transport is the discovery and delivery substrate the coordinators run on.
type Transport interface {
	// Open binds the transport to the local identity and starts delivering events to handler.
	Open(local PeerID, handler TransportHandler) error

	Advertise(serviceID string, metadata map[string]string) error
	StopAdvertising() error

	Browse(serviceID string) error
	StopBrowsing() error

	// Invite asks the peer to admit the local peer into its session.
	// The outcome is reported through ConnectionStateChanged.
	Invite(peer PeerID, context []byte, timeout time.Duration) error

	// Send hands payload over for reliable delivery to peers.
	Send(payload []byte, peers []PeerID) error

	ConnectedPeers() []PeerID

	// Disconnect drops all links of the session.
	Disconnect() error

	// Close disconnects and stops delivering events.
	Close() error
}

package huddle

// Event is delivered to observers registered with Observe.
type Event interface {
	event()
}

// PeerFound is emitted by client when a server is discovered.
type PeerFound struct {
	Peer     PeerID
	Metadata map[string]string
}

// PeerLost is emitted by client when a discovered server disappears.
type PeerLost struct {
	Peer PeerID
}

// ConnectionChanged is emitted by client when the link to its server goes up or down.
type ConnectionChanged struct {
	Peer      PeerID
	Connected bool
}

// Kicked is emitted by client after the server kicked it out of the session.
type Kicked struct {
	Peer   PeerID
	Reason string
}

// PeerConnected is emitted by server when client joins.
type PeerConnected struct {
	Peer PeerID
}

// PeerDisconnected is emitted by server when client leaves.
type PeerDisconnected struct {
	Peer PeerID
}

// PeerRejected is emitted by server when client fails admission.
type PeerRejected struct {
	Peer   PeerID
	Reason string
}

// DataReceived is emitted for every data frame before it is dispatched to subscriptions.
type DataReceived struct {
	Peer    PeerID
	Payload []byte
}

func (PeerFound) event()         {}
func (PeerLost) event()          {}
func (ConnectionChanged) event() {}
func (Kicked) event()            {}
func (PeerConnected) event()     {}
func (PeerDisconnected) event()  {}
func (PeerRejected) event()      {}
func (DataReceived) event()      {}

package wire

// Attribute is a single key/value pair of discovery metadata.
type Attribute struct {
	Key   string
	Value string
}

// Kick instructs the receiving peer to leave the session.
type Kick struct {
	RequestID [16]byte
	Reason    string
}

// Raw carries user content without envelope metadata.
type Raw struct {
	Content []byte
}

// Envelope carries user content together with its id and send time.
type Envelope struct {
	ID [16]byte

	// Timestamp is the send time in time.Time binary form.
	Timestamp []byte
	Content   []byte
}

// HandshakeRequest is the invitation context sent by a client.
type HandshakeRequest struct {
	DeviceDetails string
	AppVersion    string
}

// Hello is the message exchanged between tcp peers when connecting.
type Hello struct {
	PeerName    string
	ServiceID   string
	Advertising bool
	Metadata    []Attribute
}

// Invite asks the remote peer to admit the sender into its session.
type Invite struct {
	Context []byte
}

// InviteReply answers the invitation.
type InviteReply struct {
	Accepted bool
}

// Data carries one session frame over an established link.
type Data struct {
	Payload []byte
}

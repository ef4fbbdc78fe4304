package huddle

import "time"

const (
	// DefaultServiceID is the service advertised and browsed when none is configured.
	DefaultServiceID = "huddle-mp"

	// RoleKey is the discovery metadata key carrying the role of advertising peer.
	RoleKey = "role"

	// InviteTimeout is the time the transport waits for the invitation to be answered.
	InviteTimeout = 10 * time.Second
)

// Role is the part played by the peer in the session.
type Role string

const (
	// RoleServer advertises itself and admits clients.
	RoleServer Role = "server"

	// RoleClient discovers servers and requests to join them.
	RoleClient Role = "client"
)

// Metadata returns discovery metadata announcing the role.
func (r Role) Metadata() map[string]string {
	return map[string]string{RoleKey: string(r)}
}

// Config is the config shared by client and server.
type Config struct {
	DisplayName string
	ServiceID   string
}

func (c Config) serviceID() string {
	if c.ServiceID == "" {
		return DefaultServiceID
	}
	return c.ServiceID
}

// HandshakeRequest is sent by the client as invitation context.
type HandshakeRequest struct {
	DeviceDetails string
	AppVersion    string
}

// HandshakeResponse is the admission decision taken by the server.
type HandshakeResponse struct {
	Allowed bool
	Reason  string
}

// AdmissionPolicy decides whether the client presenting the handshake may stay in the session.
type AdmissionPolicy func(peer PeerID, request HandshakeRequest) HandshakeResponse

// ServerConfig is the config of server.
type ServerConfig struct {
	Config

	// Admission is evaluated after the invitation has been accepted at the transport level.
	Admission AdmissionPolicy

	// LegacyVersions, used only when Admission is nil, lists the display name versions allowed to join.
	LegacyVersions []string
}

package terminal

import (
	"net"
	"strconv"
)

// DefaultRemotePort is the conventional SSH port.
const DefaultRemotePort = 22

// HostInfo addresses a remote shell.
type HostInfo struct {
	Host string `json:"host"`
	Port uint16 `json:"port,omitempty"`
	User string `json:"user,omitempty"`
}

// Address returns host:port, defaulting the port.
func (h HostInfo) Address() string {
	port := h.Port
	if port == 0 {
		port = DefaultRemotePort
	}
	return net.JoinHostPort(h.Host, strconv.Itoa(int(port)))
}

// RemoteShell is the network-backed session variant. It has no transport
// yet; every operation fails with ErrUnsupported.
type RemoteShell struct {
	host HostInfo
}

// NewRemoteShell returns a RemoteShell for host.
func NewRemoteShell(host HostInfo) *RemoteShell {
	return &RemoteShell{host: host}
}

// Host returns the configured address.
func (r *RemoteShell) Host() HostInfo { return r.host }

func (r *RemoteShell) Kind() Kind { return KindRemoteShell }

func (r *RemoteShell) Write([]byte) error { return ErrUnsupported }

func (r *RemoteShell) ReadChunk() ([]byte, error) { return nil, ErrUnsupported }

func (r *RemoteShell) Close() error { return nil }

package discovery

import (
	"errors"
	"net"
	"strconv"
	"time"
)

// Service constants.
const (
	// ServiceType is the DNS-SD service type for module hosts.
	ServiceType = "_modhost._tcp"

	// Domain is the DNS-SD domain.
	Domain = "local."

	// MaxInstanceNameLen caps the advertised instance name.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	TXTKeyHostID    = "id"
	TXTKeyVersion   = "ver"
	TXTKeyUnitCount = "units"
)

// Discovery errors.
var (
	ErrMissingRequired = errors.New("missing required TXT record")
	ErrInvalidTXT      = errors.New("invalid TXT record")
	ErrNotAdvertising  = errors.New("not advertising")
)

// HostInfo describes the advertised properties of a host.
type HostInfo struct {
	// HostID is the host identifier. Required.
	HostID string

	// Version is the protocol version string.
	Version string

	// UnitCount is the number of loaded units.
	UnitCount int

	// Port is the control surface port.
	Port uint16
}

// HostService is one discovered host.
type HostService struct {
	InstanceName string
	HostID       string
	Version      string
	UnitCount    int
	Host         string
	Port         uint16
	Addresses    []net.IP
	DiscoveredAt time.Time
}

// Addr returns a dialable address for the host, preferring the first
// resolved IP and falling back to the hostname.
func (s *HostService) Addr() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0].String()
	}
	return net.JoinHostPort(host, strconv.Itoa(int(s.Port)))
}

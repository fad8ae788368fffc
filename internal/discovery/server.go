package discovery

import (
	"fmt"
	"time"
)

// Server represents a discovered provisioning server on the network
type Server struct {
	// Instance is the mDNS instance name (e.g., "moat-serve")
	Instance string

	// Hostname is the mDNS hostname (e.g., "buildhost.local.")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.4.16")
	IP string

	// Port is the HTTP port
	Port int

	// Metadata contains additional mDNS TXT record data
	// Common fields: "path=/v1/ws"
	Metadata map[string]string

	// DiscoveredAt is when the server was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the server
func (s *Server) String() string {
	return fmt.Sprintf("Provisioning server %s (%s) at %s:%d", s.Instance, s.Hostname, s.IP, s.Port)
}

// BaseURL returns the HTTP base URL for the server
func (s *Server) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", s.IP, s.Port)
}

// ConfigURL returns the URL serving the image for the given device serial
func (s *Server) ConfigURL(serial string) string {
	return fmt.Sprintf("%s/v1/config/%s", s.BaseURL(), serial)
}

// WebsocketURL returns the agent websocket endpoint, honoring the "path"
// TXT record when the server announces one
func (s *Server) WebsocketURL() string {
	path := s.GetMetadata("path")
	if path == "" {
		path = "/v1/ws"
	}
	return fmt.Sprintf("ws://%s:%d%s", s.IP, s.Port, path)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Server) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}

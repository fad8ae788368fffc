package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name         string
		entry        *zeroconf.ServiceEntry
		wantNil      bool
		wantInstance string
		wantIP       string
		wantPort     int
	}{
		{
			name: "announced server with IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "moat-serve"},
				HostName:      "buildhost.local.",
				Port:          8469,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"path=/v1/ws"},
			},
			wantNil:      false,
			wantInstance: "moat-serve",
			wantIP:       "192.168.4.16",
			wantPort:     8469,
		},
		{
			name: "server with custom instance name and port",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "lab-bench"},
				HostName:      "lab.local",
				Port:          9000,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantNil:      false,
			wantInstance: "lab-bench",
			wantIP:       "10.0.0.5",
			wantPort:     9000,
		},
		{
			name: "no port specified (should default)",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "moat-serve"},
				HostName:      "buildhost.local",
				Port:          0,
				AddrIPv4:      []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantNil:      false,
			wantInstance: "moat-serve",
			wantIP:       "172.16.0.1",
			wantPort:     DefaultPort,
		},
		{
			name: "empty instance name",
			entry: &zeroconf.ServiceEntry{
				HostName: "buildhost.local",
				Port:     8469,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name: "no IP address",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "moat-serve"},
				HostName:      "buildhost.local",
				Port:          8469,
				AddrIPv4:      []net.IP{},
				AddrIPv6:      []net.IP{},
			},
			wantNil: true,
		},
		{
			name: "IPv6 only server",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "moat-serve"},
				HostName:      "buildhost.local",
				Port:          8469,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantNil:      false,
			wantInstance: "moat-serve",
			wantIP:       "fe80::1",
			wantPort:     8469,
		},
		{
			name: "both IPv4 and IPv6 (should prefer IPv4)",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "moat-serve"},
				HostName:      "buildhost.local",
				Port:          8469,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6:      []net.IP{net.ParseIP("fe80::2")},
			},
			wantNil:      false,
			wantInstance: "moat-serve",
			wantIP:       "192.168.1.50",
			wantPort:     8469,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if server != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", server)
				}
				return
			}

			if server == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil server")
			}

			if server.Instance != tt.wantInstance {
				t.Errorf("server.Instance = %v, want %v", server.Instance, tt.wantInstance)
			}

			if server.IP != tt.wantIP {
				t.Errorf("server.IP = %v, want %v", server.IP, tt.wantIP)
			}

			if server.Port != tt.wantPort {
				t.Errorf("server.Port = %v, want %v", server.Port, tt.wantPort)
			}

			if server.Hostname != tt.entry.HostName {
				t.Errorf("server.Hostname = %v, want %v", server.Hostname, tt.entry.HostName)
			}

			// Check that DiscoveredAt is recent (within last second)
			if time.Since(server.DiscoveredAt) > time.Second {
				t.Errorf("server.DiscoveredAt is not recent: %v", server.DiscoveredAt)
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	scanner := NewScanner()

	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "moat-serve"},
		HostName:      "buildhost.local",
		Port:          8469,
		AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
		Text:          []string{"path=/v1/ws", "flag", "version=1.0"},
	}

	server := scanner.parseServiceEntry(entry)
	if server == nil {
		t.Fatal("parseServiceEntry() = nil, want server")
	}

	expectedMetadata := map[string]string{
		"path":    "/v1/ws",
		"flag":    "", // Key without value
		"version": "1.0",
	}

	if len(server.Metadata) != len(expectedMetadata) {
		t.Errorf("server.Metadata has %d entries, want %d", len(server.Metadata), len(expectedMetadata))
	}

	for key, expectedValue := range expectedMetadata {
		if actualValue, ok := server.Metadata[key]; !ok {
			t.Errorf("server.Metadata missing key %q", key)
		} else if actualValue != expectedValue {
			t.Errorf("server.Metadata[%q] = %q, want %q", key, actualValue, expectedValue)
		}
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner == nil {
		t.Fatal("NewScanner() = nil, want scanner")
	}

	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

// Note: Integration tests with live mDNS discovery require network access
// and should be run manually.

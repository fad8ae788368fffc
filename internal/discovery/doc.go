// Package discovery locates moat-serve provisioning servers via mDNS.
//
// moat-serve announces itself with the "_moatcfg._tcp" service type when
// started with --announce; this package implements the browsing side so
// that moat-cfg and flasher agents find a server without configuration.
//
// # Usage Example
//
//	// Discover servers with a 5-second timeout
//	servers, err := discovery.ScanForServers(5 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, server := range servers {
//	    fmt.Printf("Found: %s at %s:%d\n", server.Instance, server.IP, server.Port)
//	}
//
// # Server Information
//
// Each discovered server includes the mDNS instance name, hostname, IPv4
// (or IPv6) address, port, and the TXT record metadata. The announced
// "path" TXT record locates the agent websocket endpoint.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Server and client must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can
// run simultaneously without interference.
package discovery

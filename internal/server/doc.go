// Package server implements the moat-serve provisioning endpoint.
//
// Flasher agents on the bench network fetch device configurations from this
// server instead of carrying blob files around. Two access paths exist:
//
//   - HTTP: GET /v1/config/{serial} returns the raw encoded container;
//     GET /v1/serials lists the stored serials as JSON.
//   - WebSocket: an agent connects to /v1/ws, sends a JSON hello naming the
//     device serial, and receives the blob as one binary message followed
//     by a JSON acknowledgement. Unknown serials get a JSON error and the
//     session stays open for further requests.
//
// The server optionally announces itself over mDNS as "_moatcfg._tcp" so
// agents can find it without configuration.
//
// Blobs are served exactly as stored; the store validated them on insert,
// and the agent re-validates the container checksum after flashing. The
// server itself never modifies configuration data.
package server

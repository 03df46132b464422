// Package surface exposes a host over the network control plane.
//
// The Server binds a host.Host to a transport.Server: it decodes
// framed CBOR requests, dispatches List, Info, Read, and Write
// operations against the host, and maps host errors to wire statuses.
// Write privilege is established per request via the host's write
// token; an empty configured token trusts every connection, which is
// the expected mode for loopback-only deployments.
//
// The Client is the matching request/response side for management
// tools. It reconnects with exponential backoff when the host drops
// the connection.
package surface

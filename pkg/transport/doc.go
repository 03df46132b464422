// Package transport implements the framed TCP transport for the modhost
// control plane.
//
// # Framing
//
// Messages are length-prefixed: a 4-byte big-endian length followed by
// the payload. The payload is an opaque byte slice to this package; the
// wire package defines its CBOR structure.
//
// # Server and Client
//
// Server accepts connections and delivers complete frames through
// callbacks. Each connection gets a UUID used to correlate log events.
// Client dials a host and exchanges frames synchronously.
//
// The control plane is a local or trusted-network surface, like the
// parameter filesystem it replaces; write privilege is established per
// request by the surface layer, not per channel.
package transport

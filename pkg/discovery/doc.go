// Package discovery provides mDNS/DNS-SD advertisement and browsing
// for module hosts.
//
// A host advertises one service of type "_modhost._tcp" carrying its
// host ID, protocol version, and loaded unit count in TXT records.
// Management tools browse for that service type to find hosts on the
// local network without configuration.
//
// The TXT codec is separated from the mDNS plumbing so it can be
// tested without network access.
package discovery

// Package wire defines the modhost control-plane message format.
//
// # Message Format
//
// All messages are CBOR maps with integer keys. A request addresses a
// unit (and optionally a parameter) by name:
//
//	{
//	  1: messageId,   // uint32, non-zero
//	  2: operation,   // uint8: 1=List, 2=Info, 3=Read, 4=Write
//	  3: unit,        // string (empty for List)
//	  4: param,       // string (Read/Write only)
//	  5: payload,     // operation-specific data
//	  6: token        // write-privilege token (Write only)
//	}
//
// The response mirrors the message ID and carries a status code:
//
//	{
//	  1: messageId,
//	  2: status,      // uint8: 0=success, or error code
//	  3: payload      // operation-specific response data (if success)
//	}
//
// The codec uses a deterministic encoder and a lenient decoder so that
// newer peers can add fields without breaking older ones.
package wire

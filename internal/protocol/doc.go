// Package protocol owns the wire contract between the driving process and the
// agent running inside the target process.
//
// Ownership boundary:
// - message variants and the correlation envelope
// - envelope payload encoding (field primitives live in protocol/field)
// - length-prefixed framing (protocol/frame)
// - session transport (protocol/session): correlation table, client, dispatcher
//
// Wire layout:
//
//	frame    = length:u32be payload
//	payload  = correlation_id:u64be tag:u8 fields...
//
// A correlation id of zero marks a new request. A nonzero id marks the response
// to the request the responder counted under that id.
package protocol

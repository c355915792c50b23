// Package telenet frames schema-encoded envelopes for transit over an
// untrusted store-and-forward transport.
//
// Wire layout, big-endian:
//
//	[2]length [4]sequence [8]mac [..]payload
//
// length covers everything after the length field. The MAC gives cheap
// integrity and, with the monotonic sequence, a lightweight anti-replay
// signal without a per-message handshake, which a high-churn fleet cannot
// afford. Frame and Unframe are pure functions, no IO.
package telenet

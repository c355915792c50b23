package telenet

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/juju/errors"
)

const (
	lenSize    = 2
	seqSize    = 4
	headerSize = lenSize + seqSize + MacSize
)

var (
	ErrTruncated        = fmt.Errorf("frame truncated")
	ErrMalformed        = fmt.Errorf("frame malformed")
	ErrIntegrity        = fmt.Errorf("frame integrity mismatch")
	ErrFrameLenOverflow = fmt.Errorf("frame too large")
)

// Frame wraps an encoded envelope: [u16 length][u32 sequence][mac][payload].
// length covers the remainder after the length field; the MAC is computed
// over sequence ‖ payload. Deterministic, never fails for well-formed input.
func Frame(seq uint32, payload, secret []byte) ([]byte, error) {
	if len(payload) > math.MaxUint16-(seqSize+MacSize) {
		return nil, ErrFrameLenOverflow
	}
	b := make([]byte, headerSize+len(payload))
	binary.BigEndian.PutUint16(b[0:], uint16(seqSize+MacSize+len(payload)))
	binary.BigEndian.PutUint32(b[lenSize:], seq)
	copy(b[headerSize:], payload)
	mac, err := Mac1(secret, b[lenSize:lenSize+seqSize], payload)
	if err != nil {
		return nil, errors.Annotate(err, "frame mac")
	}
	binary.BigEndian.PutUint64(b[lenSize+seqSize:], mac)
	return b, nil
}

// Unframe verifies and strips the frame header. ErrIntegrity deliberately
// does not distinguish a tampered frame from a wrong key: both are noise to
// the caller, not a parse failure worth surfacing separately.
func Unframe(b, secret []byte) (seq uint32, payload []byte, err error) {
	if len(b) < lenSize {
		return 0, nil, errors.Annotate(ErrTruncated, "length prefix")
	}
	declared := int(binary.BigEndian.Uint16(b))
	if declared < seqSize+MacSize {
		return 0, nil, errors.Annotatef(ErrMalformed, "declared=%d", declared)
	}
	rest := len(b) - lenSize
	if rest < declared {
		return 0, nil, errors.Annotatef(ErrTruncated, "declared=%d have=%d", declared, rest)
	}
	if rest > declared {
		return 0, nil, errors.Annotatef(ErrMalformed, "declared=%d have=%d", declared, rest)
	}
	seq = binary.BigEndian.Uint32(b[lenSize:])
	declaredMac := binary.BigEndian.Uint64(b[lenSize+seqSize:])
	payload = b[headerSize:]
	actual, err := Mac1(secret, b[lenSize:lenSize+seqSize], payload)
	if err != nil {
		return 0, nil, errors.Annotate(err, "unframe mac")
	}
	if actual != declaredMac {
		return 0, nil, ErrIntegrity
	}
	return seq, payload, nil
}

package tele

import (
	"github.com/juju/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Envelope is the schema-encoded command body before framing. Payload is a
// sum type: exactly one variant set, never independently-nullable fields.
type Envelope struct {
	Sequence  uint32 // 1
	Timestamp uint32 // 2, unix seconds
	RequestID string // 3
	AuthLevel uint32 // 4
	// oneof payload { 5=System 6=Config 7=Output 8=Diagnostic 9=Ota 10=ConfigRead }
	Payload EnvelopePayload
}

type EnvelopePayload interface {
	isEnvelopePayload()
	validate() error
	appendBinary(b []byte) []byte
}

// RequiredAuthLevel maps a payload variant to the privilege tier it demands
// on the receiving panel.
func RequiredAuthLevel(p EnvelopePayload) uint32 {
	switch p.(type) {
	case *SystemCommand:
		return AuthLevelStatus
	case *ConfigCommand, *DiagnosticCommand, *OTACommand, *ConfigReadCommand:
		return AuthLevelConfig
	case *OutputCommand:
		return AuthLevelOutput
	}
	return AuthLevelOutput // unknown variants get the strictest tier
}

// MarshalBinary fails only when the schema rejects the input; callers must
// treat that as a programming error, not a transient condition.
func (e *Envelope) MarshalBinary() ([]byte, error) {
	if e.Payload == nil {
		return nil, errors.NotValidf("envelope payload not set")
	}
	if err := e.Payload.validate(); err != nil {
		return nil, errors.Annotate(err, "envelope payload")
	}
	b := make([]byte, 0, 64)
	b = appendUint32(b, 1, e.Sequence)
	b = appendUint32(b, 2, e.Timestamp)
	b = appendString(b, 3, e.RequestID)
	b = appendUint32(b, 4, e.AuthLevel)
	switch p := e.Payload.(type) {
	case *SystemCommand:
		b = appendMessage(b, 5, p)
	case *ConfigCommand:
		b = appendMessage(b, 6, p)
	case *OutputCommand:
		b = appendMessage(b, 7, p)
	case *DiagnosticCommand:
		b = appendMessage(b, 8, p)
	case *OTACommand:
		b = appendMessage(b, 9, p)
	case *ConfigReadCommand:
		b = appendMessage(b, 10, p)
	default:
		return nil, errors.NotValidf("envelope payload type %T", p)
	}
	return b, nil
}

func (e *Envelope) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		switch {
		case num <= 4 && typ == protowire.VarintType && num != 3:
			u, n, err := consumeUint32(v)
			if err != nil {
				return 0, false, err
			}
			switch num {
			case 1:
				e.Sequence = u
			case 2:
				e.Timestamp = u
			case 4:
				e.AuthLevel = u
			}
			return n, true, nil
		case num == 3 && typ == protowire.BytesType:
			s, n, err := consumeString(v)
			e.RequestID = s
			return n, true, err
		case num >= 5 && num <= 10 && typ == protowire.BytesType:
			inner, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return 0, false, protowire.ParseError(n)
			}
			var err error
			switch num {
			case 5:
				p := new(SystemCommand)
				err = p.UnmarshalBinary(inner)
				e.Payload = p
			case 6:
				p := new(ConfigCommand)
				err = p.UnmarshalBinary(inner)
				e.Payload = p
			case 7:
				p := new(OutputCommand)
				err = p.UnmarshalBinary(inner)
				e.Payload = p
			case 8:
				p := new(DiagnosticCommand)
				err = p.UnmarshalBinary(inner)
				e.Payload = p
			case 9:
				p := new(OTACommand)
				err = p.UnmarshalBinary(inner)
				e.Payload = p
			case 10:
				p := new(ConfigReadCommand)
				err = p.UnmarshalBinary(inner)
				e.Payload = p
			}
			return n, true, err
		}
		return 0, false, nil
	})
}

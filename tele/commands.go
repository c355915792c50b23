package tele

import (
	"github.com/juju/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// SystemCommand is fleet bookkeeping: identity sync, status poll, reboot.
type SystemCommand struct {
	Action     SystemAction // 1
	DeviceDbId uint32       // 2
}

func (*SystemCommand) isEnvelopePayload() {}

func (c *SystemCommand) validate() error {
	if c.Action == SystemInvalid || c.Action > SystemReboot {
		return errors.NotValidf("system action=%d", c.Action)
	}
	return nil
}

func (c *SystemCommand) appendBinary(b []byte) []byte {
	b = appendUint32(b, 1, uint32(c.Action))
	b = appendUint32(b, 2, c.DeviceDbId)
	return b
}

func (c *SystemCommand) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		if typ != protowire.VarintType {
			return 0, false, nil
		}
		switch num {
		case 1:
			u, n, err := consumeUint32(v)
			c.Action = SystemAction(u)
			return n, true, err
		case 2:
			u, n, err := consumeUint32(v)
			c.DeviceDbId = u
			return n, true, err
		}
		return 0, false, nil
	})
}

// OutputCommand drives a physical output. Duration of 0 means permanent.
type OutputCommand struct {
	Output        OutputTarget  // 1
	Pattern       OutputPattern // 2
	State         bool          // 3
	TotalDuration uint32        // 4, seconds
}

func (*OutputCommand) isEnvelopePayload() {}

func (c *OutputCommand) validate() error {
	if c.Output == OutputInvalid || c.Output > OutputAll {
		return errors.NotValidf("output target=%d", c.Output)
	}
	if c.Pattern == PatternInvalid || c.Pattern > PatternCustom {
		return errors.NotValidf("output pattern=%d", c.Pattern)
	}
	return nil
}

func (c *OutputCommand) appendBinary(b []byte) []byte {
	b = appendUint32(b, 1, uint32(c.Output))
	b = appendUint32(b, 2, uint32(c.Pattern))
	b = appendBool(b, 3, c.State)
	b = appendUint32(b, 4, c.TotalDuration)
	return b
}

func (c *OutputCommand) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		if typ != protowire.VarintType {
			return 0, false, nil
		}
		switch num {
		case 1:
			u, n, err := consumeUint32(v)
			c.Output = OutputTarget(u)
			return n, true, err
		case 2:
			u, n, err := consumeUint32(v)
			c.Pattern = OutputPattern(u)
			return n, true, err
		case 3:
			f, n, err := consumeBool(v)
			c.State = f
			return n, true, err
		case 4:
			u, n, err := consumeUint32(v)
			c.TotalDuration = u
			return n, true, err
		}
		return 0, false, nil
	})
}

type DiagnosticCommand struct {
	Action   DiagAction // 1
	TestMask uint32     // 2, SELF_TEST only
	LogLines uint32     // 3, LOG_DUMP only
}

func (*DiagnosticCommand) isEnvelopePayload() {}

func (c *DiagnosticCommand) validate() error {
	if c.Action == DiagInvalid || c.Action > DiagLogDump {
		return errors.NotValidf("diagnostic action=%d", c.Action)
	}
	return nil
}

func (c *DiagnosticCommand) appendBinary(b []byte) []byte {
	b = appendUint32(b, 1, uint32(c.Action))
	b = appendUint32(b, 2, c.TestMask)
	b = appendUint32(b, 3, c.LogLines)
	return b
}

func (c *DiagnosticCommand) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		if typ != protowire.VarintType {
			return 0, false, nil
		}
		switch num {
		case 1:
			u, n, err := consumeUint32(v)
			c.Action = DiagAction(u)
			return n, true, err
		case 2:
			u, n, err := consumeUint32(v)
			c.TestMask = u
			return n, true, err
		case 3:
			u, n, err := consumeUint32(v)
			c.LogLines = u
			return n, true, err
		}
		return 0, false, nil
	})
}

type OTACommand struct {
	URL     string // 1
	Version string // 2
	Sha256  string // 3
	Size    uint32 // 4
}

func (*OTACommand) isEnvelopePayload() {}

func (c *OTACommand) validate() error {
	if c.URL == "" {
		return errors.NotValidf("ota url empty")
	}
	return nil
}

func (c *OTACommand) appendBinary(b []byte) []byte {
	b = appendString(b, 1, c.URL)
	b = appendString(b, 2, c.Version)
	b = appendString(b, 3, c.Sha256)
	b = appendUint32(b, 4, c.Size)
	return b
}

func (c *OTACommand) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			s, n, err := consumeString(v)
			c.URL = s
			return n, true, err
		case num == 2 && typ == protowire.BytesType:
			s, n, err := consumeString(v)
			c.Version = s
			return n, true, err
		case num == 3 && typ == protowire.BytesType:
			s, n, err := consumeString(v)
			c.Sha256 = s
			return n, true, err
		case num == 4 && typ == protowire.VarintType:
			u, n, err := consumeUint32(v)
			c.Size = u
			return n, true, err
		}
		return 0, false, nil
	})
}

type ConfigReadCommand struct {
	Section ConfigSection // 1
}

func (*ConfigReadCommand) isEnvelopePayload() {}

func (c *ConfigReadCommand) validate() error {
	if c.Section == SectionInvalid || c.Section > SectionAll {
		return errors.NotValidf("config section=%d", c.Section)
	}
	return nil
}

func (c *ConfigReadCommand) appendBinary(b []byte) []byte {
	return appendUint32(b, 1, uint32(c.Section))
}

func (c *ConfigReadCommand) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		if num == 1 && typ == protowire.VarintType {
			u, n, err := consumeUint32(v)
			c.Section = ConfigSection(u)
			return n, true, err
		}
		return 0, false, nil
	})
}

package tele

import (
	"github.com/juju/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// ConfigCommand writes one configuration section to the panel. The section is
// a sum type mirroring the proto oneof; exactly one variant is set.
type ConfigCommand struct {
	// oneof section { 1=Wifi 2=Mqtt 3=Zone 4=Output 5=Report 6=Security }
	Section ConfigPayload
}

type ConfigPayload interface {
	submessage
	isConfigPayload()
}

type WifiConfig struct {
	Ssid     string // 1
	Password string // 2
	Dhcp     bool   // 3
}

type MqttConfig struct {
	BrokerURL    string // 1
	Username     string // 2
	Password     string // 3
	KeepaliveSec uint32 // 4
}

type ZoneConfig struct {
	Zone     uint32 // 1
	Enabled  bool   // 2
	Name     string // 3
	DelaySec uint32 // 4
}

type OutputConfig struct {
	Output          OutputTarget  // 1
	Pattern         OutputPattern // 2
	DefaultDuration uint32        // 3
}

type ReportConfig struct {
	HeartbeatSec uint32 // 1
	StatusSec    uint32 // 2
}

type SecurityConfig struct {
	Secret  []byte // 1, next shared MAC key
	PinCode string // 2
}

func (*WifiConfig) isConfigPayload()     {}
func (*MqttConfig) isConfigPayload()     {}
func (*ZoneConfig) isConfigPayload()     {}
func (*OutputConfig) isConfigPayload()   {}
func (*ReportConfig) isConfigPayload()   {}
func (*SecurityConfig) isConfigPayload() {}

func (*ConfigCommand) isEnvelopePayload() {}

func (c *ConfigCommand) validate() error {
	switch s := c.Section.(type) {
	case *WifiConfig:
		if s.Ssid == "" {
			return errors.NotValidf("wifi ssid empty")
		}
	case *MqttConfig:
		if s.BrokerURL == "" {
			return errors.NotValidf("mqtt broker empty")
		}
	case *ZoneConfig, *OutputConfig, *ReportConfig, *SecurityConfig:
	case nil:
		return errors.NotValidf("config section not set")
	default:
		return errors.NotValidf("config section type %T", s)
	}
	return nil
}

func (c *ConfigCommand) appendBinary(b []byte) []byte {
	switch s := c.Section.(type) {
	case *WifiConfig:
		b = appendMessage(b, 1, s)
	case *MqttConfig:
		b = appendMessage(b, 2, s)
	case *ZoneConfig:
		b = appendMessage(b, 3, s)
	case *OutputConfig:
		b = appendMessage(b, 4, s)
	case *ReportConfig:
		b = appendMessage(b, 5, s)
	case *SecurityConfig:
		b = appendMessage(b, 6, s)
	}
	return b
}

func (c *ConfigCommand) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		if typ != protowire.BytesType {
			return 0, false, nil
		}
		inner, n := protowire.ConsumeBytes(v)
		if n < 0 {
			return 0, false, protowire.ParseError(n)
		}
		switch num {
		case 1:
			s := new(WifiConfig)
			c.Section = s
			return n, true, s.UnmarshalBinary(inner)
		case 2:
			s := new(MqttConfig)
			c.Section = s
			return n, true, s.UnmarshalBinary(inner)
		case 3:
			s := new(ZoneConfig)
			c.Section = s
			return n, true, s.UnmarshalBinary(inner)
		case 4:
			s := new(OutputConfig)
			c.Section = s
			return n, true, s.UnmarshalBinary(inner)
		case 5:
			s := new(ReportConfig)
			c.Section = s
			return n, true, s.UnmarshalBinary(inner)
		case 6:
			s := new(SecurityConfig)
			c.Section = s
			return n, true, s.UnmarshalBinary(inner)
		}
		return 0, false, nil
	})
}

func (s *WifiConfig) appendBinary(b []byte) []byte {
	b = appendString(b, 1, s.Ssid)
	b = appendString(b, 2, s.Password)
	b = appendBool(b, 3, s.Dhcp)
	return b
}

func (s *WifiConfig) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			x, n, err := consumeString(v)
			s.Ssid = x
			return n, true, err
		case num == 2 && typ == protowire.BytesType:
			x, n, err := consumeString(v)
			s.Password = x
			return n, true, err
		case num == 3 && typ == protowire.VarintType:
			x, n, err := consumeBool(v)
			s.Dhcp = x
			return n, true, err
		}
		return 0, false, nil
	})
}

func (s *MqttConfig) appendBinary(b []byte) []byte {
	b = appendString(b, 1, s.BrokerURL)
	b = appendString(b, 2, s.Username)
	b = appendString(b, 3, s.Password)
	b = appendUint32(b, 4, s.KeepaliveSec)
	return b
}

func (s *MqttConfig) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			x, n, err := consumeString(v)
			s.BrokerURL = x
			return n, true, err
		case num == 2 && typ == protowire.BytesType:
			x, n, err := consumeString(v)
			s.Username = x
			return n, true, err
		case num == 3 && typ == protowire.BytesType:
			x, n, err := consumeString(v)
			s.Password = x
			return n, true, err
		case num == 4 && typ == protowire.VarintType:
			x, n, err := consumeUint32(v)
			s.KeepaliveSec = x
			return n, true, err
		}
		return 0, false, nil
	})
}

func (s *ZoneConfig) appendBinary(b []byte) []byte {
	b = appendUint32(b, 1, s.Zone)
	b = appendBool(b, 2, s.Enabled)
	b = appendString(b, 3, s.Name)
	b = appendUint32(b, 4, s.DelaySec)
	return b
}

func (s *ZoneConfig) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			x, n, err := consumeUint32(v)
			s.Zone = x
			return n, true, err
		case num == 2 && typ == protowire.VarintType:
			x, n, err := consumeBool(v)
			s.Enabled = x
			return n, true, err
		case num == 3 && typ == protowire.BytesType:
			x, n, err := consumeString(v)
			s.Name = x
			return n, true, err
		case num == 4 && typ == protowire.VarintType:
			x, n, err := consumeUint32(v)
			s.DelaySec = x
			return n, true, err
		}
		return 0, false, nil
	})
}

func (s *OutputConfig) appendBinary(b []byte) []byte {
	b = appendUint32(b, 1, uint32(s.Output))
	b = appendUint32(b, 2, uint32(s.Pattern))
	b = appendUint32(b, 3, s.DefaultDuration)
	return b
}

func (s *OutputConfig) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		if typ != protowire.VarintType {
			return 0, false, nil
		}
		switch num {
		case 1:
			x, n, err := consumeUint32(v)
			s.Output = OutputTarget(x)
			return n, true, err
		case 2:
			x, n, err := consumeUint32(v)
			s.Pattern = OutputPattern(x)
			return n, true, err
		case 3:
			x, n, err := consumeUint32(v)
			s.DefaultDuration = x
			return n, true, err
		}
		return 0, false, nil
	})
}

func (s *ReportConfig) appendBinary(b []byte) []byte {
	b = appendUint32(b, 1, s.HeartbeatSec)
	b = appendUint32(b, 2, s.StatusSec)
	return b
}

func (s *ReportConfig) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		if typ != protowire.VarintType {
			return 0, false, nil
		}
		switch num {
		case 1:
			x, n, err := consumeUint32(v)
			s.HeartbeatSec = x
			return n, true, err
		case 2:
			x, n, err := consumeUint32(v)
			s.StatusSec = x
			return n, true, err
		}
		return 0, false, nil
	})
}

func (s *SecurityConfig) appendBinary(b []byte) []byte {
	b = appendBytes(b, 1, s.Secret)
	b = appendString(b, 2, s.PinCode)
	return b
}

func (s *SecurityConfig) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			x, n, err := consumeBytes(v)
			s.Secret = x
			return n, true, err
		case num == 2 && typ == protowire.BytesType:
			x, n, err := consumeString(v)
			s.PinCode = x
			return n, true, err
		}
		return 0, false, nil
	})
}

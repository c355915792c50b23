package tele

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Telemetry records are self-contained: panel identity travels as DeviceDbId
// or in the topic, no cross-message referential integrity.

type Heartbeat struct {
	DeviceDbId uint32 // 1
	Timestamp  uint32 // 2
	Uptime     uint32 // 3, seconds
	FreeHeap   uint32 // 4, bytes
	Rssi       int32  // 5, dBm, zigzag
	BatteryPct uint32 // 6
	Firmware   string // 7
}

func (m *Heartbeat) MarshalBinary() ([]byte, error) { return m.appendBinary(nil), nil }

func (m *Heartbeat) appendBinary(b []byte) []byte {
	b = appendUint32(b, 1, m.DeviceDbId)
	b = appendUint32(b, 2, m.Timestamp)
	b = appendUint32(b, 3, m.Uptime)
	b = appendUint32(b, 4, m.FreeHeap)
	b = appendSint32(b, 5, m.Rssi)
	b = appendUint32(b, 6, m.BatteryPct)
	b = appendString(b, 7, m.Firmware)
	return b
}

func (m *Heartbeat) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		switch {
		case num == 7 && typ == protowire.BytesType:
			s, n, err := consumeString(v)
			m.Firmware = s
			return n, true, err
		case num == 5 && typ == protowire.VarintType:
			x, n, err := consumeSint32(v)
			m.Rssi = x
			return n, true, err
		case typ == protowire.VarintType:
			u, n, err := consumeUint32(v)
			if err != nil {
				return 0, false, err
			}
			switch num {
			case 1:
				m.DeviceDbId = u
			case 2:
				m.Timestamp = u
			case 3:
				m.Uptime = u
			case 4:
				m.FreeHeap = u
			case 6:
				m.BatteryPct = u
			default:
				return 0, false, nil
			}
			return n, true, nil
		}
		return 0, false, nil
	})
}

type StatusMessage struct {
	DeviceDbId uint32 // 1
	Timestamp  uint32 // 2
	Armed      bool   // 3
	BatteryPct uint32 // 4
	Rssi       int32  // 5, zigzag
	MainsPower bool   // 6
	Zones      uint32 // 7, open-zone bitmask
	Firmware   string // 8
}

func (m *StatusMessage) MarshalBinary() ([]byte, error) { return m.appendBinary(nil), nil }

func (m *StatusMessage) appendBinary(b []byte) []byte {
	b = appendUint32(b, 1, m.DeviceDbId)
	b = appendUint32(b, 2, m.Timestamp)
	b = appendBool(b, 3, m.Armed)
	b = appendUint32(b, 4, m.BatteryPct)
	b = appendSint32(b, 5, m.Rssi)
	b = appendBool(b, 6, m.MainsPower)
	b = appendUint32(b, 7, m.Zones)
	b = appendString(b, 8, m.Firmware)
	return b
}

func (m *StatusMessage) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		switch {
		case num == 8 && typ == protowire.BytesType:
			s, n, err := consumeString(v)
			m.Firmware = s
			return n, true, err
		case num == 5 && typ == protowire.VarintType:
			x, n, err := consumeSint32(v)
			m.Rssi = x
			return n, true, err
		case (num == 3 || num == 6) && typ == protowire.VarintType:
			f, n, err := consumeBool(v)
			if err != nil {
				return 0, false, err
			}
			if num == 3 {
				m.Armed = f
			} else {
				m.MainsPower = f
			}
			return n, true, nil
		case typ == protowire.VarintType:
			u, n, err := consumeUint32(v)
			if err != nil {
				return 0, false, err
			}
			switch num {
			case 1:
				m.DeviceDbId = u
			case 2:
				m.Timestamp = u
			case 4:
				m.BatteryPct = u
			case 7:
				m.Zones = u
			default:
				return 0, false, nil
			}
			return n, true, nil
		}
		return 0, false, nil
	})
}

type AlarmEvent struct {
	DeviceDbId uint32    // 1
	Timestamp  uint32    // 2
	Zone       uint32    // 3
	Kind       AlarmKind // 4
	Priority   uint32    // 5
	Message    string    // 6
}

func (m *AlarmEvent) MarshalBinary() ([]byte, error) { return m.appendBinary(nil), nil }

func (m *AlarmEvent) appendBinary(b []byte) []byte {
	b = appendUint32(b, 1, m.DeviceDbId)
	b = appendUint32(b, 2, m.Timestamp)
	b = appendUint32(b, 3, m.Zone)
	b = appendUint32(b, 4, uint32(m.Kind))
	b = appendUint32(b, 5, m.Priority)
	b = appendString(b, 6, m.Message)
	return b
}

func (m *AlarmEvent) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		switch {
		case num == 6 && typ == protowire.BytesType:
			s, n, err := consumeString(v)
			m.Message = s
			return n, true, err
		case typ == protowire.VarintType:
			u, n, err := consumeUint32(v)
			if err != nil {
				return 0, false, err
			}
			switch num {
			case 1:
				m.DeviceDbId = u
			case 2:
				m.Timestamp = u
			case 3:
				m.Zone = u
			case 4:
				m.Kind = AlarmKind(u)
			case 5:
				m.Priority = u
			default:
				return 0, false, nil
			}
			return n, true, nil
		}
		return 0, false, nil
	})
}

type LoginMessage struct {
	DeviceDbId uint32 // 1
	Timestamp  uint32 // 2
	Firmware   string // 3
	IP         string // 4
	Mac        string // 5
}

func (m *LoginMessage) MarshalBinary() ([]byte, error) { return m.appendBinary(nil), nil }

func (m *LoginMessage) appendBinary(b []byte) []byte {
	b = appendUint32(b, 1, m.DeviceDbId)
	b = appendUint32(b, 2, m.Timestamp)
	b = appendString(b, 3, m.Firmware)
	b = appendString(b, 4, m.IP)
	b = appendString(b, 5, m.Mac)
	return b
}

func (m *LoginMessage) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		switch {
		case typ == protowire.BytesType:
			s, n, err := consumeString(v)
			if err != nil {
				return 0, false, err
			}
			switch num {
			case 3:
				m.Firmware = s
			case 4:
				m.IP = s
			case 5:
				m.Mac = s
			default:
				return 0, false, nil
			}
			return n, true, nil
		case typ == protowire.VarintType:
			u, n, err := consumeUint32(v)
			if err != nil {
				return 0, false, err
			}
			switch num {
			case 1:
				m.DeviceDbId = u
			case 2:
				m.Timestamp = u
			default:
				return 0, false, nil
			}
			return n, true, nil
		}
		return 0, false, nil
	})
}

type LastWillMessage struct {
	DeviceDbId uint32 // 1
	Timestamp  uint32 // 2
}

func (m *LastWillMessage) MarshalBinary() ([]byte, error) { return m.appendBinary(nil), nil }

func (m *LastWillMessage) appendBinary(b []byte) []byte {
	b = appendUint32(b, 1, m.DeviceDbId)
	b = appendUint32(b, 2, m.Timestamp)
	return b
}

func (m *LastWillMessage) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		if typ != protowire.VarintType {
			return 0, false, nil
		}
		u, n, err := consumeUint32(v)
		if err != nil {
			return 0, false, err
		}
		switch num {
		case 1:
			m.DeviceDbId = u
		case 2:
			m.Timestamp = u
		default:
			return 0, false, nil
		}
		return n, true, nil
	})
}

// CommandResponse correlates to a prior Envelope by RequestID. Transient:
// either it arrives within the caller's timeout or the command is considered
// unacknowledged.
type CommandResponse struct {
	RequestID string // 1
	Timestamp uint32 // 2
	Success   bool   // 3
	ErrorCode uint32 // 4
	Message   string // 5
	Payload   []byte // 6
}

func (m *CommandResponse) MarshalBinary() ([]byte, error) { return m.appendBinary(nil), nil }

func (m *CommandResponse) appendBinary(b []byte) []byte {
	b = appendString(b, 1, m.RequestID)
	b = appendUint32(b, 2, m.Timestamp)
	b = appendBool(b, 3, m.Success)
	b = appendUint32(b, 4, m.ErrorCode)
	b = appendString(b, 5, m.Message)
	b = appendBytes(b, 6, m.Payload)
	return b
}

func (m *CommandResponse) UnmarshalBinary(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			s, n, err := consumeString(v)
			m.RequestID = s
			return n, true, err
		case num == 5 && typ == protowire.BytesType:
			s, n, err := consumeString(v)
			m.Message = s
			return n, true, err
		case num == 6 && typ == protowire.BytesType:
			x, n, err := consumeBytes(v)
			m.Payload = x
			return n, true, err
		case num == 3 && typ == protowire.VarintType:
			f, n, err := consumeBool(v)
			m.Success = f
			return n, true, err
		case (num == 2 || num == 4) && typ == protowire.VarintType:
			u, n, err := consumeUint32(v)
			if err != nil {
				return 0, false, err
			}
			if num == 2 {
				m.Timestamp = u
			} else {
				m.ErrorCode = u
			}
			return n, true, nil
		}
		return 0, false, nil
	})
}

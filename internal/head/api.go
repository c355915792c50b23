// Package head is the backend protocol head for a fleet of alarm panels:
// it encodes authenticated commands going out and dispatches telemetry
// coming in. External collaborators (device directory, persistence, live
// notification) are injected as interfaces.
package head

import (
	"fmt"

	"github.com/panelware/telehead/tele"
)

// DeviceIdentity is one provisioned panel. Hostname is the topic-addressing
// key, ID the stable cross-system key owned by the directory.
type DeviceIdentity struct {
	Hostname string `json:"hostname"`
	ID       uint32 `json:"id"`
}

// Class of an inbound message, derived from the topic suffix.
type Class uint8

const (
	ClassInvalid Class = iota
	ClassHeartbeat
	ClassLogin
	ClassStatus
	ClassAlarm
	ClassResponse
	ClassLastWill
)

func (c Class) String() string {
	switch c {
	case ClassHeartbeat:
		return "heartbeat"
	case ClassLogin:
		return "login"
	case ClassStatus:
		return "status"
	case ClassAlarm:
		return "alarm"
	case ClassResponse:
		return "response"
	case ClassLastWill:
		return "last-will"
	}
	return fmt.Sprintf("Class(%d)", uint8(c))
}

func (c Class) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Event is the normalized record emitted to subscribers for every accepted
// inbound message, independent of whether persistence succeeded.
type Event struct {
	Device    DeviceIdentity `json:"device"`
	Class     Class          `json:"class"`
	Timestamp uint32         `json:"timestamp"`
	Payload   any            `json:"payload,omitempty"`
}

// CommandRecord is the audit trail entry for one issued command.
type CommandRecord struct {
	RequestID string
	Sequence  uint32
	DeviceID  uint32
	Hostname  string
	Variant   string
	AuthLevel uint32
	Timestamp uint32
}

// Ticket identifies an issued command for later response correlation.
type Ticket struct {
	RequestID string
	Sequence  uint32
}

// Directory resolves provisioned panels. Lookups fail with a NotFound error
// for unknown devices; their messages are dropped, not processed.
type Directory interface {
	Lookup(hostname string) (DeviceIdentity, error)
	LookupID(id uint32) (DeviceIdentity, error)
}

// Store receives fire-and-forget persistence calls. The head depends on
// durable writes only, never on read-back.
type Store interface {
	SaveHeartbeat(d DeviceIdentity, m *tele.Heartbeat) error
	SaveStatus(d DeviceIdentity, m *tele.StatusMessage) error
	SaveAlarm(d DeviceIdentity, m *tele.AlarmEvent) error
	SaveLogin(d DeviceIdentity, m *tele.LoginMessage) error
	MarkOffline(d DeviceIdentity, timestamp uint32) error
}

// Auditor appends issued commands to a durable trail.
type Auditor interface {
	AuditCommand(rec *CommandRecord) error
}

// Notifier fans events out to interactive consumers. Delivery guarantees are
// the sink's concern.
type Notifier interface {
	Publish(deviceID uint32, ev *Event)
}

// Transport is the pub/sub session the head talks through.
type Transport interface {
	Publish(topic string, payload []byte) error
	Subscribe(filters ...string) error
}

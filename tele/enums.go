package tele

import "fmt"

// Privilege tiers carried in Envelope.AuthLevel. Any relay that enforces
// privilege must check the tier itself, never trust the sender.
const (
	AuthLevelStatus uint32 = 0 // read/status
	AuthLevelConfig uint32 = 1 // configuration/diagnostics
	AuthLevelOutput uint32 = 2 // physical output control
)

type SystemAction uint32

const (
	SystemInvalid SystemAction = iota
	SystemSyncIdentity
	SystemRequestStatus
	SystemReboot
)

func (a SystemAction) String() string {
	switch a {
	case SystemSyncIdentity:
		return "sync-identity"
	case SystemRequestStatus:
		return "request-status"
	case SystemReboot:
		return "reboot"
	}
	return fmt.Sprintf("SystemAction(%d)", uint32(a))
}

type OutputTarget uint32

const (
	OutputInvalid OutputTarget = iota
	OutputSiren
	OutputTurret
	OutputRelay1
	OutputRelay2
	OutputAll
)

func (t OutputTarget) String() string {
	switch t {
	case OutputSiren:
		return "siren"
	case OutputTurret:
		return "turret"
	case OutputRelay1:
		return "relay1"
	case OutputRelay2:
		return "relay2"
	case OutputAll:
		return "all"
	}
	return fmt.Sprintf("OutputTarget(%d)", uint32(t))
}

type OutputPattern uint32

const (
	PatternInvalid OutputPattern = iota
	PatternConstant
	PatternPulse
	PatternBlink
	PatternSOS
	PatternStrobe
	PatternPWM
	PatternCustom
)

func (p OutputPattern) String() string {
	switch p {
	case PatternConstant:
		return "constant"
	case PatternPulse:
		return "pulse"
	case PatternBlink:
		return "blink"
	case PatternSOS:
		return "sos"
	case PatternStrobe:
		return "strobe"
	case PatternPWM:
		return "pwm"
	case PatternCustom:
		return "custom"
	}
	return fmt.Sprintf("OutputPattern(%d)", uint32(p))
}

type DiagAction uint32

const (
	DiagInvalid DiagAction = iota
	DiagMemoryInfo
	DiagNetworkInfo
	DiagSensorRead
	DiagSelfTest
	DiagLogDump
)

func (a DiagAction) String() string {
	switch a {
	case DiagMemoryInfo:
		return "memory-info"
	case DiagNetworkInfo:
		return "network-info"
	case DiagSensorRead:
		return "sensor-read"
	case DiagSelfTest:
		return "self-test"
	case DiagLogDump:
		return "log-dump"
	}
	return fmt.Sprintf("DiagAction(%d)", uint32(a))
}

type AlarmKind uint32

const (
	AlarmUnknown AlarmKind = iota
	AlarmIntrusion
	AlarmTamper
	AlarmFire
	AlarmPanic
	AlarmPowerLoss
	AlarmLowBattery
)

func (k AlarmKind) String() string {
	switch k {
	case AlarmIntrusion:
		return "intrusion"
	case AlarmTamper:
		return "tamper"
	case AlarmFire:
		return "fire"
	case AlarmPanic:
		return "panic"
	case AlarmPowerLoss:
		return "power-loss"
	case AlarmLowBattery:
		return "low-battery"
	}
	return fmt.Sprintf("AlarmKind(%d)", uint32(k))
}

type ConfigSection uint32

const (
	SectionInvalid ConfigSection = iota
	SectionWifi
	SectionMqtt
	SectionZones
	SectionOutputs
	SectionReport
	SectionSecurity
	SectionAll
)

func (s ConfigSection) String() string {
	switch s {
	case SectionWifi:
		return "wifi"
	case SectionMqtt:
		return "mqtt"
	case SectionZones:
		return "zones"
	case SectionOutputs:
		return "outputs"
	case SectionReport:
		return "report"
	case SectionSecurity:
		return "security"
	case SectionAll:
		return "all"
	}
	return fmt.Sprintf("ConfigSection(%d)", uint32(s))
}

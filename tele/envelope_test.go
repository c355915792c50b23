package tele

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload EnvelopePayload
	}{
		{"system", &SystemCommand{Action: SystemSyncIdentity, DeviceDbId: 42}},
		{"output", &OutputCommand{Output: OutputTurret, Pattern: PatternBlink, State: true, TotalDuration: 15}},
		{"diag", &DiagnosticCommand{Action: DiagSelfTest, TestMask: 0b1011}},
		{"ota", &OTACommand{URL: "https://fw.example/panel-2.bin", Version: "2.4.1", Sha256: "ab12", Size: 917504}},
		{"config read", &ConfigReadCommand{Section: SectionZones}},
		{"config wifi", &ConfigCommand{Section: &WifiConfig{Ssid: "warehouse", Password: "pw", Dhcp: true}}},
		{"config report", &ConfigCommand{Section: &ReportConfig{HeartbeatSec: 30, StatusSec: 300}}},
		{"config security", &ConfigCommand{Section: &SecurityConfig{Secret: []byte{1, 2, 3, 4, 5, 6, 7, 8}, PinCode: "4812"}}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			in := Envelope{
				Sequence:  77,
				Timestamp: 1700000000,
				RequestID: "9b2e8a1c-0000-4000-8000-c0ffee000001",
				AuthLevel: RequiredAuthLevel(c.payload),
				Payload:   c.payload,
			}
			b, err := in.MarshalBinary()
			require.NoError(t, err)
			var out Envelope
			require.NoError(t, out.UnmarshalBinary(b))
			assert.Equal(t, in, out)
		})
	}
}

// A siren-on command must carry the strict privilege tier and a correlation
// id, and decode to exactly what was asked for.
func TestEnvelopeSirenCommand(t *testing.T) {
	t.Parallel()

	in := Envelope{
		Sequence:  1,
		Timestamp: 1700000123,
		RequestID: "5f3c2a9e-7b1d-4e6f-9a08-1234567890ab",
		Payload: &OutputCommand{
			Output:        OutputSiren,
			Pattern:       PatternConstant,
			State:         true,
			TotalDuration: 30,
		},
	}
	in.AuthLevel = RequiredAuthLevel(in.Payload)
	require.Equal(t, AuthLevelOutput, in.AuthLevel)

	b, err := in.MarshalBinary()
	require.NoError(t, err)

	var out Envelope
	require.NoError(t, out.UnmarshalBinary(b))
	oc, ok := out.Payload.(*OutputCommand)
	require.True(t, ok, "payload variant: %T", out.Payload)
	assert.Equal(t, OutputSiren, oc.Output)
	assert.True(t, oc.State)
	assert.Equal(t, uint32(30), oc.TotalDuration)
	assert.Equal(t, AuthLevelOutput, out.AuthLevel)
	assert.NotEmpty(t, out.RequestID)
}

func TestEnvelopeEncodeRejects(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload EnvelopePayload
	}{
		{"nil payload", nil},
		{"invalid output target", &OutputCommand{Output: OutputTarget(99), Pattern: PatternConstant}},
		{"invalid pattern", &OutputCommand{Output: OutputSiren, Pattern: PatternInvalid}},
		{"invalid system action", &SystemCommand{Action: SystemInvalid}},
		{"ota without url", &OTACommand{Version: "1.0"}},
		{"config section unset", &ConfigCommand{}},
		{"wifi without ssid", &ConfigCommand{Section: &WifiConfig{Password: "pw"}}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			e := Envelope{Sequence: 1, RequestID: "r", Payload: c.payload}
			_, err := e.MarshalBinary()
			require.Error(t, err)
			assert.True(t, errors.IsNotValid(errors.Cause(err)), "got %v", err)
		})
	}
}

func TestEnvelopeRequiredAuthLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, AuthLevelStatus, RequiredAuthLevel(&SystemCommand{}))
	assert.Equal(t, AuthLevelConfig, RequiredAuthLevel(&ConfigCommand{}))
	assert.Equal(t, AuthLevelConfig, RequiredAuthLevel(&DiagnosticCommand{}))
	assert.Equal(t, AuthLevelConfig, RequiredAuthLevel(&OTACommand{}))
	assert.Equal(t, AuthLevelConfig, RequiredAuthLevel(&ConfigReadCommand{}))
	assert.Equal(t, AuthLevelOutput, RequiredAuthLevel(&OutputCommand{}))
}

// Decoders skip fields they do not know, so a newer peer can add fields
// without breaking older readers.
func TestEnvelopeSkipsUnknownFields(t *testing.T) {
	t.Parallel()

	in := Envelope{
		Sequence:  5,
		RequestID: "req-1",
		Payload:   &SystemCommand{Action: SystemReboot},
	}
	b, err := in.MarshalBinary()
	require.NoError(t, err)

	b = protowire.AppendTag(b, 90, protowire.BytesType)
	b = protowire.AppendString(b, "from-the-future")
	b = protowire.AppendTag(b, 91, protowire.VarintType)
	b = protowire.AppendVarint(b, 12345)

	var out Envelope
	require.NoError(t, out.UnmarshalBinary(b))
	assert.Equal(t, in.Sequence, out.Sequence)
	assert.Equal(t, in.RequestID, out.RequestID)
	assert.Equal(t, in.Payload, out.Payload)
}

func TestEnvelopeDecodeGarbage(t *testing.T) {
	t.Parallel()

	var e Envelope
	err := e.UnmarshalBinary([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	assert.Error(t, err)
}

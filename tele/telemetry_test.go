package tele

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeartbeatNegativeRssi(t *testing.T) {
	t.Parallel()

	in := Heartbeat{
		DeviceDbId: 7,
		Timestamp:  1700000000,
		Uptime:     86400,
		FreeHeap:   43212,
		Rssi:       -67,
		BatteryPct: 93,
		Firmware:   "2.4.1",
	}
	b, err := in.MarshalBinary()
	require.NoError(t, err)
	var out Heartbeat
	require.NoError(t, out.UnmarshalBinary(b))
	assert.Equal(t, in, out)
	assert.Equal(t, int32(-67), out.Rssi)
}

func TestStatusMessageFlags(t *testing.T) {
	t.Parallel()

	in := StatusMessage{
		DeviceDbId: 3,
		Timestamp:  1700000300,
		Armed:      true,
		BatteryPct: 100,
		Rssi:       -51,
		MainsPower: true,
		Zones:      0b0101,
		Firmware:   "2.4.1",
	}
	b, err := in.MarshalBinary()
	require.NoError(t, err)
	var out StatusMessage
	require.NoError(t, out.UnmarshalBinary(b))
	assert.Equal(t, in, out)
}

func TestAlarmEventRoundTrip(t *testing.T) {
	t.Parallel()

	in := AlarmEvent{
		DeviceDbId: 11,
		Timestamp:  1700000500,
		Zone:       4,
		Kind:       AlarmTamper,
		Priority:   2,
		Message:    "lid open",
	}
	b, err := in.MarshalBinary()
	require.NoError(t, err)
	var out AlarmEvent
	require.NoError(t, out.UnmarshalBinary(b))
	assert.Equal(t, in, out)
	assert.Equal(t, "tamper", out.Kind.String())
}

func TestCommandResponseRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("failure with code", func(t *testing.T) {
		t.Parallel()
		in := CommandResponse{
			RequestID: "5f3c2a9e-7b1d-4e6f-9a08-1234567890ab",
			Timestamp: 1700000600,
			Success:   false,
			ErrorCode: 12,
			Message:   "output busy",
		}
		b, err := in.MarshalBinary()
		require.NoError(t, err)
		var out CommandResponse
		require.NoError(t, out.UnmarshalBinary(b))
		assert.Equal(t, in, out)
	})

	t.Run("success with payload", func(t *testing.T) {
		t.Parallel()
		in := CommandResponse{
			RequestID: "req-77",
			Timestamp: 1700000601,
			Success:   true,
			Payload:   []byte{0x0a, 0x03, 'a', 'b', 'c'},
		}
		b, err := in.MarshalBinary()
		require.NoError(t, err)
		var out CommandResponse
		require.NoError(t, out.UnmarshalBinary(b))
		assert.Equal(t, in, out)
	})
}

func TestLoginAndLastWill(t *testing.T) {
	t.Parallel()

	login := LoginMessage{DeviceDbId: 5, Timestamp: 1700000700, Firmware: "2.4.1", IP: "10.1.2.3", Mac: "aa:bb:cc:dd:ee:ff"}
	b, err := login.MarshalBinary()
	require.NoError(t, err)
	var loginOut LoginMessage
	require.NoError(t, loginOut.UnmarshalBinary(b))
	assert.Equal(t, login, loginOut)

	lw := LastWillMessage{DeviceDbId: 5, Timestamp: 1700000800}
	b, err = lw.MarshalBinary()
	require.NoError(t, err)
	var lwOut LastWillMessage
	require.NoError(t, lwOut.UnmarshalBinary(b))
	assert.Equal(t, lw, lwOut)
}

func TestClampU32(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0), ClampU32(0))
	assert.Equal(t, uint32(123), ClampU32(123))
	assert.Equal(t, uint32(0xffffffff), ClampU32(-1))
	assert.Equal(t, uint32(0), ClampU32(1<<32))
}

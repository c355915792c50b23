package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelware/telehead/internal/head"
)

func TestAuditRoundTrip(t *testing.T) {
	t.Parallel()

	a, err := OpenAudit("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	first := &head.CommandRecord{
		RequestID: "req-1",
		Sequence:  100,
		DeviceID:  101,
		Hostname:  "panel-1",
		Variant:   "output/siren",
		AuthLevel: 2,
		Timestamp: 1700000000,
	}
	second := &head.CommandRecord{
		RequestID: "req-2",
		Sequence:  101,
		DeviceID:  102,
		Hostname:  "panel-2",
		Variant:   "system/reboot",
		Timestamp: 1700000001,
	}
	require.NoError(t, a.AuditCommand(first))
	require.NoError(t, a.AuditCommand(second))

	got, err := a.Pop()
	require.NoError(t, err)
	assert.Equal(t, first, got, "trail is FIFO")
	got, err = a.Pop()
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

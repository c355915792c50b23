package head

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTopic(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "prod/pb/d/panel-1/cmd", commandTopic("prod", "panel-1"))
}

func TestParseDeviceTopic(t *testing.T) {
	t.Parallel()

	cases := []struct {
		topic    string
		hostname string
		suffix   string
		ok       bool
	}{
		{"prod/pb/d/panel-1/hb", "panel-1", "hb", true},
		{"prod/pb/d/panel-2/response", "panel-2", "response", true},
		{"prod/pb/d/panel-1/lw", "panel-1", "lw", true},
		{"other/pb/d/panel-1/hb", "", "", false},
		{"prod/pb/d/panel-1", "", "", false},
		{"prod/pb/d//hb", "", "", false},
		{"prod/pb/d/panel-1/", "", "", false},
		{"prod/pb/d/panel-1/hb/extra", "", "", false},
		{"prod/pb/c/panel-1/hb", "", "", false},
	}
	for _, c := range cases {
		c := c
		t.Run(c.topic, func(t *testing.T) {
			t.Parallel()
			hostname, suffix, err := parseDeviceTopic("prod", c.topic)
			if !c.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.hostname, hostname)
			assert.Equal(t, c.suffix, suffix)
		})
	}
}

func TestClassFromSuffix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ClassHeartbeat, classFromSuffix("hb"))
	assert.Equal(t, ClassLogin, classFromSuffix("login"))
	assert.Equal(t, ClassStatus, classFromSuffix("status"))
	assert.Equal(t, ClassAlarm, classFromSuffix("alarm"))
	assert.Equal(t, ClassResponse, classFromSuffix("response"))
	assert.Equal(t, ClassLastWill, classFromSuffix("lw"))
	assert.Equal(t, ClassInvalid, classFromSuffix("cmd"), "own outbound suffix is not inbound")
	assert.Equal(t, ClassInvalid, classFromSuffix("bogus"))
}

func TestMapDirectory(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	dir := NewMapDirectory(cfg.Devices)

	d, err := dir.Lookup("panel-1")
	require.NoError(t, err)
	assert.Equal(t, DeviceIdentity{Hostname: "panel-1", ID: 101}, d)

	d, err = dir.LookupID(102)
	require.NoError(t, err)
	assert.Equal(t, "panel-2", d.Hostname)

	_, err = dir.Lookup("ghost")
	assert.Error(t, err)
	_, err = dir.LookupID(999)
	assert.Error(t, err)
}

package tele_config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
broker_url = "tls://broker.example:8883"
client_prefix = "telehead"
username = "fleet"
password = "hunter2"
base_topic = "prod"
secret = "746573742d7365637265742d30313233"
keepalive_sec = 30
reconnect_attempts = 5
log_debug = true
notify_listen = "127.0.0.1:7070"

device "panel-1" { id = 101 }
device "panel-2" { id = 102 }
`

func TestConfigParse(t *testing.T) {
	t.Parallel()

	c, err := Parse(sampleConfig)
	require.NoError(t, err)
	assert.Equal(t, "tls://broker.example:8883", c.BrokerURL)
	assert.Equal(t, "prod", c.BaseTopic)
	assert.Equal(t, []byte("test-secret-0123"), c.Secret())
	assert.Equal(t, 30, c.KeepaliveSec)
	assert.Equal(t, 5, c.ReconnectAttempts)
	assert.True(t, c.LogDebug)

	require.Len(t, c.Devices, 2)
	assert.Equal(t, DeviceConfig{Hostname: "panel-1", ID: 101}, c.Devices[0])
	assert.Equal(t, DeviceConfig{Hostname: "panel-2", ID: 102}, c.Devices[1])
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	c, err := Parse(`
broker_url = "tcp://localhost:1883"
base_topic = "b"
secret = "0102030405060708"
`)
	require.NoError(t, err)
	assert.Equal(t, DefaultKeepaliveSec, c.KeepaliveSec)
	assert.Equal(t, DefaultNetworkTimeout, c.NetworkTimeout())
	assert.Equal(t, int(DefaultReconnectMin/time.Second), c.ReconnectMinSec)
	assert.Equal(t, int(DefaultReconnectMax/time.Second), c.ReconnectMaxSec)
	assert.Equal(t, DefaultReconnectAttempts, c.ReconnectAttempts)
	assert.Equal(t, 30*time.Second, c.ResponseTimeout())
	assert.Empty(t, c.Devices)
}

func TestConfigInvalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
	}{
		{"missing broker", `base_topic = "b"` + "\n" + `secret = "0102030405060708"`},
		{"missing base topic", `broker_url = "tcp://h:1"` + "\n" + `secret = "0102030405060708"`},
		{"secret not hex", `broker_url = "tcp://h:1"` + "\n" + `base_topic = "b"` + "\n" + `secret = "zz"`},
		{"secret too short", `broker_url = "tcp://h:1"` + "\n" + `base_topic = "b"` + "\n" + `secret = "01020304"`},
		{
			"device without id",
			`broker_url = "tcp://h:1"` + "\n" + `base_topic = "b"` + "\n" + `secret = "0102030405060708"` + "\n" +
				`device "p" { id = 0 }`,
		},
		{
			"duplicate hostname",
			`broker_url = "tcp://h:1"` + "\n" + `base_topic = "b"` + "\n" + `secret = "0102030405060708"` + "\n" +
				`device "p" { id = 1 }` + "\n" + `device "p" { id = 2 }`,
		},
		{
			"duplicate id",
			`broker_url = "tcp://h:1"` + "\n" + `base_topic = "b"` + "\n" + `secret = "0102030405060708"` + "\n" +
				`device "p1" { id = 1 }` + "\n" + `device "p2" { id = 1 }`,
		},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(c.text)
			assert.Error(t, err)
		})
	}
}

func TestConfigReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "telehead.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	c, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", c.BaseTopic)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}

// Package tele_config holds the operational configuration of the protocol
// head: broker endpoint, shared MAC key, topic base and provisioned devices.
package tele_config

import (
	"encoding/hex"
	"os"
	"time"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
)

const (
	DefaultNetworkTimeout    = 30 * time.Second
	DefaultKeepaliveSec      = 60
	DefaultReconnectMin      = 1 * time.Second
	DefaultReconnectMax      = 60 * time.Second
	DefaultReconnectAttempts = 10
)

type Config struct { //nolint:maligned
	BrokerURL    string `hcl:"broker_url"`
	ClientPrefix string `hcl:"client_prefix"`
	Username     string `hcl:"username"`
	Password     string `hcl:"password"`
	TLSCaFile    string `hcl:"tls_ca_file"`

	// BaseTopic is the deployment-specific topic prefix `B`.
	BaseTopic string `hcl:"base_topic"`
	// SecretHex is the deployment-wide frame MAC key, hex encoded.
	SecretHex string `hcl:"secret"`

	KeepaliveSec       int  `hcl:"keepalive_sec"`
	NetworkTimeoutSec  int  `hcl:"network_timeout_sec"`
	ReconnectMinSec    int  `hcl:"reconnect_min_sec"`
	ReconnectMaxSec    int  `hcl:"reconnect_max_sec"`
	ReconnectAttempts  int  `hcl:"reconnect_attempts"`
	ResponseTimeoutSec int  `hcl:"response_timeout_sec"`
	LogDebug           bool `hcl:"log_debug"`

	StorePath    string `hcl:"store_path"`
	AuditPath    string `hcl:"audit_path"`
	NotifyListen string `hcl:"notify_listen"`

	Devices []DeviceConfig `hcl:"device"`

	secret []byte
}

// DeviceConfig is one provisioned panel: hostname is the topic-addressing
// key, ID the stable cross-system key.
type DeviceConfig struct {
	Hostname string `hcl:"hostname,key"`
	ID       uint32 `hcl:"id"`
}

func ReadFile(path string) (*Config, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "config read path=%s", path)
	}
	return Parse(string(bs))
}

func Parse(text string) (*Config, error) {
	c := new(Config)
	if err := hcl.Unmarshal([]byte(text), c); err != nil {
		return nil, errors.Annotate(err, "config parse")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.BrokerURL == "" {
		return errors.NotValidf("config broker_url empty")
	}
	if c.BaseTopic == "" {
		return errors.NotValidf("config base_topic empty")
	}
	secret, err := hex.DecodeString(c.SecretHex)
	if err != nil {
		return errors.Annotate(err, "config secret")
	}
	if len(secret) < 8 {
		return errors.NotValidf("config secret shorter than 8 bytes")
	}
	c.secret = secret

	if c.KeepaliveSec == 0 {
		c.KeepaliveSec = DefaultKeepaliveSec
	}
	if c.NetworkTimeoutSec == 0 {
		c.NetworkTimeoutSec = int(DefaultNetworkTimeout / time.Second)
	}
	if c.ReconnectMinSec == 0 {
		c.ReconnectMinSec = int(DefaultReconnectMin / time.Second)
	}
	if c.ReconnectMaxSec == 0 {
		c.ReconnectMaxSec = int(DefaultReconnectMax / time.Second)
	}
	if c.ReconnectAttempts == 0 {
		c.ReconnectAttempts = DefaultReconnectAttempts
	}
	if c.ResponseTimeoutSec == 0 {
		c.ResponseTimeoutSec = 30
	}
	seen := make(map[string]struct{}, len(c.Devices))
	ids := make(map[uint32]struct{}, len(c.Devices))
	for _, d := range c.Devices {
		if d.Hostname == "" || d.ID == 0 {
			return errors.NotValidf("device hostname=%q id=%d", d.Hostname, d.ID)
		}
		if _, ok := seen[d.Hostname]; ok {
			return errors.NotValidf("duplicate device hostname=%s", d.Hostname)
		}
		if _, ok := ids[d.ID]; ok {
			return errors.NotValidf("duplicate device id=%d", d.ID)
		}
		seen[d.Hostname] = struct{}{}
		ids[d.ID] = struct{}{}
	}
	return nil
}

// Secret returns the decoded MAC key. Valid only after Validate.
func (c *Config) Secret() []byte { return c.secret }

func (c *Config) NetworkTimeout() time.Duration {
	return time.Duration(c.NetworkTimeoutSec) * time.Second
}

func (c *Config) ResponseTimeout() time.Duration {
	return time.Duration(c.ResponseTimeoutSec) * time.Second
}

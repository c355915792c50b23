package head

import (
	"github.com/juju/errors"

	tele_config "github.com/panelware/telehead/tele/config"
)

// MapDirectory is an in-memory Directory built from config device blocks.
// Immutable after construction, safe for concurrent lookups.
type MapDirectory struct {
	byHost map[string]DeviceIdentity
	byID   map[uint32]DeviceIdentity
}

var _ Directory = (*MapDirectory)(nil)

func NewMapDirectory(devices []tele_config.DeviceConfig) *MapDirectory {
	d := &MapDirectory{
		byHost: make(map[string]DeviceIdentity, len(devices)),
		byID:   make(map[uint32]DeviceIdentity, len(devices)),
	}
	for _, dc := range devices {
		id := DeviceIdentity{Hostname: dc.Hostname, ID: dc.ID}
		d.byHost[id.Hostname] = id
		d.byID[id.ID] = id
	}
	return d
}

func (d *MapDirectory) Lookup(hostname string) (DeviceIdentity, error) {
	if id, ok := d.byHost[hostname]; ok {
		return id, nil
	}
	return DeviceIdentity{}, errors.NotFoundf("device hostname=%s", hostname)
}

func (d *MapDirectory) LookupID(numericID uint32) (DeviceIdentity, error) {
	if id, ok := d.byID[numericID]; ok {
		return id, nil
	}
	return DeviceIdentity{}, errors.NotFoundf("device id=%d", numericID)
}

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelware/telehead/internal/head"
	"github.com/panelware/telehead/tele"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStoreHeartbeat(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	d := head.DeviceIdentity{Hostname: "panel-1", ID: 101}
	hb := &tele.Heartbeat{DeviceDbId: 101, Timestamp: 1700000000, Uptime: 60, Rssi: -63, BatteryPct: 91}
	require.NoError(t, db.SaveHeartbeat(d, hb))

	got, err := db.LastHeartbeat(101)
	require.NoError(t, err)
	assert.Equal(t, hb, got)

	on, err := db.Online(101)
	require.NoError(t, err)
	assert.True(t, on, "heartbeat marks device online")
}

func TestStoreLatestWins(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	d := head.DeviceIdentity{Hostname: "panel-1", ID: 101}
	require.NoError(t, db.SaveStatus(d, &tele.StatusMessage{Timestamp: 1700000000, Armed: false}))
	require.NoError(t, db.SaveStatus(d, &tele.StatusMessage{Timestamp: 1700000060, Armed: true, Zones: 0b1}))

	got, err := db.LastStatus(101)
	require.NoError(t, err)
	assert.True(t, got.Armed)
	assert.Equal(t, uint32(1700000060), got.Timestamp)
}

func TestStoreOnlineLifecycle(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	d := head.DeviceIdentity{Hostname: "panel-2", ID: 102}

	on, err := db.Online(102)
	require.NoError(t, err)
	assert.False(t, on, "never-seen device is offline")

	require.NoError(t, db.SaveLogin(d, &tele.LoginMessage{Timestamp: 1700000000, IP: "10.0.0.5"}))
	on, err = db.Online(102)
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, db.MarkOffline(d, 1700000500))
	on, err = db.Online(102)
	require.NoError(t, err)
	assert.False(t, on)
}

func TestStoreAlarmsAppend(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	d := head.DeviceIdentity{Hostname: "panel-1", ID: 101}
	require.NoError(t, db.SaveAlarm(d, &tele.AlarmEvent{Timestamp: 1700000001, Zone: 1, Kind: tele.AlarmIntrusion}))
	require.NoError(t, db.SaveAlarm(d, &tele.AlarmEvent{Timestamp: 1700000002, Zone: 2, Kind: tele.AlarmFire}))
	require.NoError(t, db.SaveAlarm(head.DeviceIdentity{ID: 102}, &tele.AlarmEvent{Timestamp: 1700000003}))

	n, err := db.Alarms(101)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = db.Alarms(102)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStoreMissingRecord(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	_, err := db.LastHeartbeat(999)
	assert.Error(t, err)
}

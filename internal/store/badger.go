// Package store persists telemetry, alarms and the command audit trail.
// Writes are fire-and-forget from the head's point of view: the protocol
// core depends on durability, never on read-back.
package store

import (
	"encoding"
	"encoding/binary"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/juju/errors"

	"github.com/panelware/telehead/internal/head"
	"github.com/panelware/telehead/tele"
)

// Key layout:
//
//	dev/<id>/hb      latest heartbeat
//	dev/<id>/status  latest status
//	dev/<id>/login   latest login metadata
//	dev/<id>/online  1 byte flag
//	tm/<id>/<ts>     telemetry append log
//	alarm/<id>/<ts>  alarm append log
type DB struct {
	db  *badger.DB
	log hclog.Logger
}

var _ head.Store = (*DB)(nil)

// Open opens the device state store. Empty path keeps everything in memory,
// for tests.
func Open(path string, log hclog.Logger) (*DB, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	opt := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opt = opt.WithInMemory(true)
	}
	db, err := badger.Open(opt)
	if err != nil {
		return nil, errors.Annotatef(err, "store open path=%s", path)
	}
	return &DB{db: db, log: log}, nil
}

func (s *DB) Close() error { return s.db.Close() }

func (s *DB) SaveHeartbeat(d head.DeviceIdentity, m *tele.Heartbeat) error {
	return s.save(m, kv{devKey(d.ID, "hb"), nil}, kv{appendKey("tm", d.ID, m.Timestamp), nil}, kv{devKey(d.ID, "online"), []byte{1}})
}

func (s *DB) SaveStatus(d head.DeviceIdentity, m *tele.StatusMessage) error {
	return s.save(m, kv{devKey(d.ID, "status"), nil}, kv{appendKey("tm", d.ID, m.Timestamp), nil}, kv{devKey(d.ID, "online"), []byte{1}})
}

func (s *DB) SaveAlarm(d head.DeviceIdentity, m *tele.AlarmEvent) error {
	return s.save(m, kv{appendKey("alarm", d.ID, m.Timestamp), nil})
}

func (s *DB) SaveLogin(d head.DeviceIdentity, m *tele.LoginMessage) error {
	return s.save(m, kv{devKey(d.ID, "login"), nil}, kv{devKey(d.ID, "online"), []byte{1}})
}

func (s *DB) MarkOffline(d head.DeviceIdentity, timestamp uint32) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(devKey(d.ID, "online"), []byte{0})
	})
}

// Online reports the last known connectivity of a device.
func (s *DB) Online(deviceID uint32) (bool, error) {
	var on bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(devKey(deviceID, "online"))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			on = len(v) == 1 && v[0] == 1
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	return on, err
}

// LastHeartbeat returns the latest persisted heartbeat of a device.
func (s *DB) LastHeartbeat(deviceID uint32) (*tele.Heartbeat, error) {
	m := new(tele.Heartbeat)
	err := s.load(devKey(deviceID, "hb"), m.UnmarshalBinary)
	return m, err
}

// LastStatus returns the latest persisted status of a device.
func (s *DB) LastStatus(deviceID uint32) (*tele.StatusMessage, error) {
	m := new(tele.StatusMessage)
	err := s.load(devKey(deviceID, "status"), m.UnmarshalBinary)
	return m, err
}

// Alarms counts persisted alarm records of a device.
func (s *DB) Alarms(deviceID uint32) (int, error) {
	prefix := []byte(fmt.Sprintf("alarm/%08x/", deviceID))
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opt := badger.DefaultIteratorOptions
		opt.PrefetchValues = false
		opt.Prefix = prefix
		it := txn.NewIterator(opt)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

type kv struct {
	key []byte
	val []byte // nil = record bytes
}

func (s *DB) save(m encoding.BinaryMarshaler, pairs ...kv) error {
	bs, err := m.MarshalBinary()
	if err != nil {
		return errors.Annotate(err, "store marshal")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, p := range pairs {
			v := p.val
			if v == nil {
				v = bs
			}
			if err := txn.Set(p.key, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *DB) load(key []byte, unmarshal func([]byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(unmarshal)
	})
}

func devKey(id uint32, field string) []byte {
	return []byte(fmt.Sprintf("dev/%08x/%s", id, field))
}

func appendKey(kind string, id, ts uint32) []byte {
	b := []byte(fmt.Sprintf("%s/%08x/", kind, id))
	var t [4]byte
	binary.BigEndian.PutUint32(t[:], ts)
	return append(b, t[:]...)
}

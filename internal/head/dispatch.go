package head

import (
	"time"

	telenet "github.com/panelware/telehead/tele/net"

	"github.com/panelware/telehead/tele"
)

// OnMessage is the single entry point for delivered messages. It never
// panics and never lets one malformed device payload halt processing for
// other devices: bad input is logged, counted and dropped.
func (h *Head) OnMessage(topic string, raw []byte) {
	hostname, suffix, err := parseDeviceTopic(h.cfg.BaseTopic, topic)
	if err != nil {
		h.stat.RecvUnknownTopic.Add(1)
		h.log.Debug("drop foreign topic", "topic", topic)
		return
	}
	class := classFromSuffix(suffix)
	if class == ClassInvalid {
		h.stat.RecvUnknownTopic.Add(1)
		h.log.Warn("drop unknown suffix", "topic", topic, "suffix", suffix)
		return
	}
	d, err := h.dir.Lookup(hostname)
	if err != nil {
		h.stat.RecvUnknownDevice.Add(1)
		h.log.Warn("drop unprovisioned device", "hostname", hostname)
		return
	}

	seq, body, err := telenet.Unframe(raw, h.secret)
	if err != nil {
		// tampered, truncated or wrong key: noise, not a protocol error
		h.stat.RecvFrameRejected.Add(1)
		h.log.Warn("frame rejected", "device", hostname, "class", class.String(), "err", err)
		return
	}
	if !h.acceptSequence(d.ID, seq) {
		h.stat.RecvReplay.Add(1)
		h.log.Warn("stale sequence", "device", hostname, "seq", seq)
		return
	}

	ev := &Event{Device: d, Class: class, Timestamp: uint32(time.Now().Unix())}
	switch class {
	case ClassHeartbeat:
		m := new(tele.Heartbeat)
		h.decode(d, class, m.UnmarshalBinary, body)
		if m.Timestamp != 0 {
			ev.Timestamp = m.Timestamp
		}
		ev.Payload = m
		h.persist(d, func() error { return h.store.SaveHeartbeat(d, m) })

	case ClassStatus:
		m := new(tele.StatusMessage)
		h.decode(d, class, m.UnmarshalBinary, body)
		if m.Timestamp != 0 {
			ev.Timestamp = m.Timestamp
		}
		ev.Payload = m
		h.persist(d, func() error { return h.store.SaveStatus(d, m) })

	case ClassAlarm:
		m := new(tele.AlarmEvent)
		h.decode(d, class, m.UnmarshalBinary, body)
		if m.Timestamp != 0 {
			ev.Timestamp = m.Timestamp
		}
		ev.Payload = m
		h.persist(d, func() error { return h.store.SaveAlarm(d, m) })

	case ClassLogin:
		m := new(tele.LoginMessage)
		h.decode(d, class, m.UnmarshalBinary, body)
		if m.Timestamp != 0 {
			ev.Timestamp = m.Timestamp
		}
		ev.Payload = m
		h.persist(d, func() error { return h.store.SaveLogin(d, m) })

	case ClassLastWill:
		m := new(tele.LastWillMessage)
		h.decode(d, class, m.UnmarshalBinary, body)
		if m.Timestamp != 0 {
			ev.Timestamp = m.Timestamp
		}
		ev.Payload = m
		h.persist(d, func() error { return h.store.MarkOffline(d, ev.Timestamp) })

	case ClassResponse:
		m := new(tele.CommandResponse)
		h.decode(d, class, m.UnmarshalBinary, body)
		if m.Timestamp != 0 {
			ev.Timestamp = m.Timestamp
		}
		ev.Payload = m
		if h.resolveResponse(m) {
			h.log.Debug("response correlated", "device", hostname, "request", m.RequestID)
		}
	}

	h.stat.RecvAccepted.Add(1)
	// fan out regardless of persistence outcome
	if h.notify != nil {
		h.notify.Publish(d.ID, ev)
	}
}

// decode tolerates failure: the partial record is kept and the event still
// flows downstream so consumers see "something happened" rather than silence.
func (h *Head) decode(d DeviceIdentity, class Class, unmarshal func([]byte) error, body []byte) {
	if err := unmarshal(body); err != nil {
		h.stat.RecvDecodeErrors.Add(1)
		h.log.Warn("decode failed", "device", d.Hostname, "class", class.String(), "err", err)
	}
}

func (h *Head) persist(d DeviceIdentity, save func() error) {
	if h.store == nil {
		return
	}
	if err := save(); err != nil {
		h.log.Error("store append", "device", d.Hostname, "err", err)
	}
}

package head

import (
	"context"
	"expvar"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/juju/errors"

	"github.com/panelware/telehead/tele"
	tele_config "github.com/panelware/telehead/tele/config"
)

// Stat counters of one head instance. Values are updated atomically but not
// consistently with each other.
type Stat struct {
	RecvAccepted      expvar.Int
	RecvUnknownTopic  expvar.Int
	RecvUnknownDevice expvar.Int
	RecvFrameRejected expvar.Int
	RecvReplay        expvar.Int
	RecvDecodeErrors  expvar.Int
	SentCommands      expvar.Int
}

func (s *Stat) String() string {
	return fmt.Sprintf(`{"accepted":%d,"unknown_topic":%d,"unknown_device":%d,"frame_rejected":%d,"replay":%d,"decode_errors":%d,"sent":%d}`,
		s.RecvAccepted.Value(), s.RecvUnknownTopic.Value(), s.RecvUnknownDevice.Value(),
		s.RecvFrameRejected.Value(), s.RecvReplay.Value(), s.RecvDecodeErrors.Value(),
		s.SentCommands.Value())
}

// Head ties the command encoder and the inbound dispatcher to one transport
// connection. Construct once at process start and share by reference.
type Head struct {
	audit     Auditor
	cfg       *tele_config.Config
	dir       Directory
	log       hclog.Logger
	notify    Notifier
	secret    []byte
	seq       *Sequencer
	stat      Stat
	store     Store
	transport Transport

	pendingMu sync.Mutex
	pending   map[string]chan *tele.CommandResponse

	seqMu   sync.Mutex
	lastSeq map[uint32]uint32 // device id -> last accepted inbound sequence
}

func New(cfg *tele_config.Config, log hclog.Logger, tr Transport, dir Directory, store Store, audit Auditor, notify Notifier) *Head {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Head{
		audit:     audit,
		cfg:       cfg,
		dir:       dir,
		log:       log,
		notify:    notify,
		secret:    cfg.Secret(),
		seq:       NewSequencer(uint32(time.Now().Unix())),
		store:     store,
		transport: tr,
		pending:   make(map[string]chan *tele.CommandResponse, 16),
		lastSeq:   make(map[uint32]uint32, 64),
	}
}

// Subscribe registers the full inbound filter set on the transport.
func (h *Head) Subscribe() error {
	return errors.Annotate(h.transport.Subscribe(DeviceFilters(h.cfg.BaseTopic)...), "head subscribe")
}

func (h *Head) Stat() *Stat { return &h.stat }

// AwaitResponse blocks until the panel answers the given request id, the
// context ends, or the timeout passes. A timed-out command is abandoned, not
// retracted.
func (h *Head) AwaitResponse(ctx context.Context, requestID string, timeout time.Duration) (*tele.CommandResponse, error) {
	ch := make(chan *tele.CommandResponse, 1)
	h.pendingMu.Lock()
	h.pending[requestID] = ch
	h.pendingMu.Unlock()
	defer func() {
		h.pendingMu.Lock()
		delete(h.pending, requestID)
		h.pendingMu.Unlock()
	}()

	select {
	case r := <-ch:
		return r, nil

	case <-ctx.Done():
		return nil, ctx.Err()

	case <-time.After(timeout):
		return nil, errors.Timeoutf("response request=%s", requestID)
	}
}

func (h *Head) resolveResponse(r *tele.CommandResponse) bool {
	h.pendingMu.Lock()
	ch, ok := h.pending[r.RequestID]
	if ok {
		delete(h.pending, r.RequestID)
	}
	h.pendingMu.Unlock()
	if ok {
		ch <- r
	}
	return ok
}

// acceptSequence implements the weak anti-replay check: non-increasing
// sequence numbers from a device are rejected, with wrap tolerance.
func (h *Head) acceptSequence(deviceID, seq uint32) bool {
	h.seqMu.Lock()
	defer h.seqMu.Unlock()
	last, seen := h.lastSeq[deviceID]
	if seen {
		if diff := seq - last; diff == 0 || diff >= 1<<31 {
			return false
		}
	}
	h.lastSeq[deviceID] = seq
	return true
}

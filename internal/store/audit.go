package store

import (
	"encoding/json"

	"github.com/hashicorp/go-hclog"
	"github.com/juju/errors"
	"github.com/temoto/spq"

	"github.com/panelware/telehead/internal/head"
)

// value kind tag in persistent queue bytes form
const qCommandAudit byte = 1

// AuditLog is a durable append-only trail of issued commands. Consumers
// drain it out of band; the head only ever appends.
type AuditLog struct {
	q   *spq.Queue
	log hclog.Logger
}

var _ head.Auditor = (*AuditLog)(nil)

// OpenAudit opens the trail at path. Empty path keeps the queue in memory,
// for tests.
func OpenAudit(path string, log hclog.Logger) (*AuditLog, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if path == "" {
		path = spq.OnlyForTesting
	}
	q, err := spq.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "audit open path=%s", path)
	}
	return &AuditLog{q: q, log: log}, nil
}

func (a *AuditLog) Close() error { return a.q.Close() }

func (a *AuditLog) AuditCommand(rec *head.CommandRecord) error {
	js, err := json.Marshal(rec)
	if err != nil {
		return errors.Annotate(err, "audit marshal")
	}
	buf := make([]byte, 0, len(js)+1)
	buf = append(buf, qCommandAudit)
	buf = append(buf, js...)
	return errors.Annotate(a.q.Push(buf), "audit push")
}

// Pop removes and returns the oldest audit record. Unknown kinds are
// discarded, not returned as errors forever.
func (a *AuditLog) Pop() (*head.CommandRecord, error) {
	for {
		box, err := a.q.Peek()
		if err != nil {
			return nil, errors.Annotate(err, "audit peek")
		}
		b := box.Bytes()
		if len(b) == 0 || b[0] != qCommandAudit {
			a.log.Error("audit unknown kind", "raw", b)
			if err = a.q.Delete(box); err != nil {
				return nil, err
			}
			continue
		}
		rec := new(head.CommandRecord)
		if err = json.Unmarshal(b[1:], rec); err != nil {
			return nil, errors.Annotate(err, "audit unmarshal")
		}
		return rec, errors.Annotate(a.q.Delete(box), "audit delete")
	}
}

package head

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"

	"github.com/panelware/telehead/tele"
	telenet "github.com/panelware/telehead/tele/net"
)

// Command builders. Each issues a fresh request id and sequence number,
// serializes the variant with its fixed auth tier, frames and publishes.
// An encode failure is a caller bug, non-retryable; the builder never
// deduplicates, idempotency belongs to the caller.

// DiagOptions narrows a diagnostic: TestMask applies to SELF_TEST, LogLines
// to LOG_DUMP.
type DiagOptions struct {
	TestMask uint32
	LogLines uint32
}

// SendIdentitySync pushes the directory-assigned numeric id to the panel.
func (h *Head) SendIdentitySync(ctx context.Context, d DeviceIdentity) (Ticket, error) {
	return h.send(ctx, d, &tele.SystemCommand{
		Action:     tele.SystemSyncIdentity,
		DeviceDbId: tele.ClampU32(int64(d.ID)),
	})
}

func (h *Head) SendStatusRequest(ctx context.Context, d DeviceIdentity) (Ticket, error) {
	return h.send(ctx, d, &tele.SystemCommand{Action: tele.SystemRequestStatus})
}

func (h *Head) SendReboot(ctx context.Context, d DeviceIdentity) (Ticket, error) {
	return h.send(ctx, d, &tele.SystemCommand{Action: tele.SystemReboot})
}

func (h *Head) SendDiagnostic(ctx context.Context, d DeviceIdentity, action tele.DiagAction, opt DiagOptions) (Ticket, error) {
	return h.send(ctx, d, &tele.DiagnosticCommand{
		Action:   action,
		TestMask: opt.TestMask,
		LogLines: opt.LogLines,
	})
}

// SendOutput drives a physical output with a constant pattern. Duration 0
// means permanent.
func (h *Head) SendOutput(ctx context.Context, d DeviceIdentity, target tele.OutputTarget, state bool, durationSec uint32) (Ticket, error) {
	return h.send(ctx, d, &tele.OutputCommand{
		Output:        target,
		Pattern:       tele.PatternConstant,
		State:         state,
		TotalDuration: durationSec,
	})
}

func (h *Head) SendConfig(ctx context.Context, d DeviceIdentity, section tele.ConfigPayload) (Ticket, error) {
	return h.send(ctx, d, &tele.ConfigCommand{Section: section})
}

func (h *Head) SendConfigRead(ctx context.Context, d DeviceIdentity, section tele.ConfigSection) (Ticket, error) {
	return h.send(ctx, d, &tele.ConfigReadCommand{Section: section})
}

func (h *Head) SendOTA(ctx context.Context, d DeviceIdentity, cmd *tele.OTACommand) (Ticket, error) {
	return h.send(ctx, d, cmd)
}

func (h *Head) send(ctx context.Context, d DeviceIdentity, payload tele.EnvelopePayload) (Ticket, error) {
	if err := ctx.Err(); err != nil {
		return Ticket{}, err
	}
	now := uint32(time.Now().Unix())
	env := &tele.Envelope{
		Sequence:  h.seq.Next(),
		Timestamp: now,
		RequestID: uuid.NewString(),
		AuthLevel: tele.RequiredAuthLevel(payload),
		Payload:   payload,
	}
	body, err := env.MarshalBinary()
	if err != nil {
		return Ticket{}, errors.Annotate(err, "encode command")
	}
	wire, err := telenet.Frame(env.Sequence, body, h.secret)
	if err != nil {
		return Ticket{}, errors.Annotate(err, "frame command")
	}
	topic := commandTopic(h.cfg.BaseTopic, d.Hostname)
	if err = h.transport.Publish(topic, wire); err != nil {
		return Ticket{}, errors.Annotatef(err, "publish command device=%s", d.Hostname)
	}
	h.stat.SentCommands.Add(1)
	h.log.Debug("command sent", "device", d.Hostname, "seq", env.Sequence, "request", env.RequestID)

	if h.audit != nil {
		rec := &CommandRecord{
			RequestID: env.RequestID,
			Sequence:  env.Sequence,
			DeviceID:  d.ID,
			Hostname:  d.Hostname,
			Variant:   variantName(payload),
			AuthLevel: env.AuthLevel,
			Timestamp: now,
		}
		if err = h.audit.AuditCommand(rec); err != nil {
			// audit is fire-and-forget, the command is already out
			h.log.Error("audit append", "request", rec.RequestID, "err", err)
		}
	}
	return Ticket{RequestID: env.RequestID, Sequence: env.Sequence}, nil
}

func variantName(p tele.EnvelopePayload) string {
	switch c := p.(type) {
	case *tele.SystemCommand:
		return "system/" + c.Action.String()
	case *tele.ConfigCommand:
		return "config"
	case *tele.OutputCommand:
		return "output/" + c.Output.String()
	case *tele.DiagnosticCommand:
		return "diagnostic/" + c.Action.String()
	case *tele.OTACommand:
		return "ota"
	case *tele.ConfigReadCommand:
		return "config-read"
	}
	return "unknown"
}

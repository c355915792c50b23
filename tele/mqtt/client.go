package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/juju/errors"
	"github.com/temoto/alive/v2"

	"github.com/panelware/telehead/helpers"
)

const (
	DefaultNetworkTimeout    = 30 * time.Second
	DefaultReconnectMin      = 1 * time.Second
	DefaultReconnectMax      = 60 * time.Second
	DefaultReconnectAttempts = 10

	// Inbound topics use at-least-once, commands are fire-and-forget.
	QosSubscribe = byte(1)
	QosPublish   = byte(0)
)

var (
	ErrClosing      = fmt.Errorf("MQTT connection is closing")
	ErrNotConnected = fmt.Errorf("MQTT connection is offline")
	ErrGaveUp       = fmt.Errorf("MQTT reconnect attempts exhausted")
)

// test seam
var newPahoClient = func(o *pahomqtt.ClientOptions) pahomqtt.Client {
	return pahomqtt.NewClient(o)
}

type Options struct {
	BrokerURL    string
	ClientPrefix string
	Username     string
	Password     string
	TLS          *tls.Config

	KeepaliveSec      uint16
	NetworkTimeout    time.Duration
	ReconnectMin      time.Duration
	ReconnectMax      time.Duration
	ReconnectAttempts int

	OnMessage func(topic string, payload []byte)
	Log       hclog.Logger
}

// Conn owns the long-lived pub/sub session to the broker.
// - one Conn per process, shared by reference
// - Subscribe is idempotent; the tracked filter set is replayed in full on
//   every reconnect so no inbound class of message is silently dropped
// - reconnection is limited exponential backoff; exhausting the budget is
//   terminal until manual intervention
type Conn struct {
	mu sync.Mutex

	alive    *alive.Alive
	backoff  helpers.Backoff
	clientID string
	events   chan Transition
	log      hclog.Logger
	lost     chan error
	m        pahomqtt.Client
	opt      Options
	state    State
	subs     map[string]byte
}

func NewConn(opt Options) (*Conn, error) {
	if opt.OnMessage == nil {
		return nil, errors.NotValidf("code error mqtt.Options.OnMessage=nil")
	}
	if _, err := url.ParseRequestURI(opt.BrokerURL); err != nil {
		return nil, errors.Annotatef(err, "config error mqtt BrokerURL=%s", opt.BrokerURL)
	}
	if opt.NetworkTimeout == 0 {
		opt.NetworkTimeout = DefaultNetworkTimeout
	}
	if opt.ReconnectMin == 0 {
		opt.ReconnectMin = DefaultReconnectMin
	}
	if opt.ReconnectMax == 0 {
		opt.ReconnectMax = DefaultReconnectMax
	}
	if opt.ReconnectAttempts == 0 {
		opt.ReconnectAttempts = DefaultReconnectAttempts
	}
	if opt.Log == nil {
		opt.Log = hclog.NewNullLogger()
	}

	c := &Conn{
		alive:  alive.NewAlive(),
		events: make(chan Transition, 16),
		log:    opt.Log,
		lost:   make(chan error, 1),
		opt:    opt,
		state:  StateDisconnected,
		subs:   make(map[string]byte, 8),
	}
	c.backoff = helpers.Backoff{
		Min:      opt.ReconnectMin,
		Max:      opt.ReconnectMax,
		Attempts: opt.ReconnectAttempts,
	}
	// unique per-run client identifier
	c.clientID = fmt.Sprintf("%s-%.8s", opt.ClientPrefix, uuid.NewString())

	mopt := pahomqtt.NewClientOptions().
		AddBroker(opt.BrokerURL).
		SetClientID(c.clientID).
		SetUsername(opt.Username).
		SetPassword(opt.Password).
		SetCleanSession(true).
		SetKeepAlive(time.Duration(opt.KeepaliveSec) * time.Second).
		SetConnectTimeout(opt.NetworkTimeout).
		SetOrderMatters(false).
		SetAutoReconnect(false). // reconnect policy is ours
		SetConnectRetry(false).
		SetDefaultPublishHandler(c.onMessage).
		SetConnectionLostHandler(c.onLost)
	if opt.TLS != nil {
		mopt.SetTLSConfig(opt.TLS)
	}
	c.m = newPahoClient(mopt)
	return c, nil
}

// Connect opens the session. Fails with a timeout error if no handshake
// completes within NetworkTimeout. On success the reconnect worker starts.
func (c *Conn) Connect(ctx context.Context) error {
	c.setState(StateConnecting, 0, nil)
	if err := c.tryConnect(); err != nil {
		c.setState(StateDisconnected, 0, err)
		return err
	}
	c.setState(StateConnected, 0, nil)
	if c.alive.Add(1) {
		go c.worker()
	}
	return nil
}

// Subscribe adds topic filters to the tracked set and subscribes at QoS 1.
// Re-subscribing an already-tracked filter is a no-op that still succeeds.
func (c *Conn) Subscribe(filters ...string) error {
	fresh := make(map[string]byte, len(filters))
	c.mu.Lock()
	for _, f := range filters {
		if _, ok := c.subs[f]; !ok {
			fresh[f] = QosSubscribe
		}
	}
	c.mu.Unlock()
	if len(fresh) == 0 {
		return nil
	}

	t := c.m.SubscribeMultiple(fresh, nil)
	if !t.WaitTimeout(c.opt.NetworkTimeout) {
		return errors.Timeoutf("subscribe filters=%v", filters)
	}
	if err := t.Error(); err != nil {
		return errors.Annotatef(err, "subscribe filters=%v", filters)
	}
	c.mu.Lock()
	for f, q := range fresh {
		c.subs[f] = q
	}
	c.mu.Unlock()
	c.log.Debug("subscribed", "filters", filters)
	return nil
}

// Subscriptions returns the tracked filter set.
func (c *Conn) Subscriptions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.subs))
	for f := range c.subs {
		out = append(out, f)
	}
	return out
}

// Publish sends fire-and-forget at QoS 0. Callers needing confirmation must
// correlate via request id against a later response, with their own timeout.
func (c *Conn) Publish(topic string, payload []byte) error {
	if !c.alive.IsRunning() {
		return ErrClosing
	}
	if !c.m.IsConnectionOpen() {
		return ErrNotConnected
	}
	t := c.m.Publish(topic, QosPublish, false, payload)
	if !t.WaitTimeout(c.opt.NetworkTimeout) {
		return errors.Timeoutf("publish topic=%s", topic)
	}
	if err := t.Error(); err != nil {
		return errors.Annotatef(err, "publish topic=%s", topic)
	}
	return nil
}

// Events exposes state transitions. The channel is buffered; when consumers
// lag, intermediate transitions are dropped, terminal ones are not.
func (c *Conn) Events() <-chan Transition { return c.events }

func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conn) ClientID() string { return c.clientID }

func (c *Conn) Close() error {
	c.setState(StateClosed, 0, nil)
	c.alive.Stop()
	if c.m.IsConnectionOpen() {
		c.m.Disconnect(250)
	}
	c.alive.Wait()
	return nil
}

func (c *Conn) tryConnect() error {
	t := c.m.Connect()
	if !t.WaitTimeout(c.opt.NetworkTimeout) {
		return errors.Timeoutf("connect broker=%s", c.opt.BrokerURL)
	}
	if err := t.Error(); err != nil {
		return errors.Annotatef(err, "connect broker=%s", c.opt.BrokerURL)
	}
	return nil
}

func (c *Conn) onMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	c.opt.OnMessage(msg.Topic(), msg.Payload())
}

func (c *Conn) onLost(_ pahomqtt.Client, err error) {
	c.log.Warn("connection lost", "err", err)
	select {
	case c.lost <- err:
	default: // reconnect already pending
	}
}

// worker owns the reconnect policy: wait, double, cap, give up.
func (c *Conn) worker() {
	defer c.alive.Done()
	stopch := c.alive.StopChan()
	for {
		select {
		case err := <-c.lost:
			if !c.reconnect(err, stopch) {
				return
			}

		case <-stopch:
			return
		}
	}
}

// reconnect returns false when the worker must exit (closing or gave up).
func (c *Conn) reconnect(cause error, stopch <-chan struct{}) bool {
	c.setState(StateReconnecting, 0, cause)
	for {
		delay := c.backoff.Failure()
		attempt := c.backoff.Tries()
		c.log.Debug("reconnect wait", "attempt", attempt, "delay", delay, "since", c.backoff.SinceLast())
		select {
		case <-time.After(delay):

		case <-stopch:
			return false
		}

		err := c.tryConnect()
		if err == nil {
			if err = c.replaySubscriptions(); err == nil {
				c.backoff.Reset()
				c.setState(StateConnected, attempt, nil)
				return true
			}
			// half-open session is useless, drop it and keep retrying
			c.m.Disconnect(100)
		}
		c.log.Error("reconnect failed", "attempt", attempt, "since", c.backoff.SinceLast(), "err", err)
		if c.backoff.Exhausted() {
			c.setState(StateGaveUp, attempt, errors.Annotatef(ErrGaveUp, "last err=%v", err))
			return false
		}
	}
}

// replaySubscriptions restores exactly the tracked set, not a partial one.
func (c *Conn) replaySubscriptions() error {
	c.mu.Lock()
	snapshot := make(map[string]byte, len(c.subs))
	for f, q := range c.subs {
		snapshot[f] = q
	}
	c.mu.Unlock()
	if len(snapshot) == 0 {
		return nil
	}
	t := c.m.SubscribeMultiple(snapshot, nil)
	if !t.WaitTimeout(c.opt.NetworkTimeout) {
		return errors.Timeoutf("resubscribe")
	}
	return errors.Annotate(t.Error(), "resubscribe")
}

func (c *Conn) setState(to State, attempt int, err error) {
	c.mu.Lock()
	from := c.state
	if from == StateClosed && to != StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = to
	c.mu.Unlock()
	if from == to {
		return
	}
	tr := Transition{From: from, To: to, Attempt: attempt, Err: err}
	select {
	case c.events <- tr:
	default:
		if to == StateGaveUp || to == StateClosed {
			// make room: terminal transitions must not be lost
			select {
			case <-c.events:
			default:
			}
			c.events <- tr
		} else {
			c.log.Debug("event dropped", "transition", tr.String())
		}
	}
}

// internal/mqtt/bridge.go
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tamzrod/luxtronik-replicator/internal/config"
	"github.com/tamzrod/luxtronik-replicator/internal/coordinator"
	"github.com/tamzrod/luxtronik-replicator/internal/derive"
	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
)

const (
	payloadOnline  = "online"
	payloadOffline = "offline"

	publishTimeout = 2 * time.Second
	connectTimeout = 10 * time.Second
	defaultWrite   = 30 * time.Second
)

var ErrNotConnected = errors.New("mqtt: not connected")

// Broker is the subset of paho.Client the bridge uses.
type Broker interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
}

// Writer takes a debounced batch of parameter writes.
type Writer interface {
	WriteMany(ctx context.Context, values map[string]int32) (luxtronik.Snapshot, error)
}

type Options struct {
	Prefix   string
	QoS      byte
	Retain   bool
	Debounce time.Duration

	// WriteTimeout bounds one WriteMany call. Zero means 30s.
	WriteTimeout time.Duration

	Registry *registry.Registry

	// Tracker, when set, adds the next learned EVU event to the state topic.
	Tracker *derive.EVUTracker
}

// Bridge publishes snapshots to a broker and turns set messages into
// debounced controller writes.
type Bridge struct {
	opts   Options
	reg    *registry.Registry
	writer Writer
	log    *zap.Logger

	debounce *coordinator.Debouncer

	mu     sync.Mutex
	broker Broker
	client paho.Client // nil when built around a plain Broker
	closed bool
}

func New(broker Broker, w Writer, opts Options, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = registry.Default()
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWrite
	}
	opts.Prefix = strings.TrimSuffix(opts.Prefix, "/")

	b := &Bridge{
		opts:   opts,
		reg:    opts.Registry,
		writer: w,
		log:    log,
		broker: broker,
	}
	b.debounce = coordinator.NewDebouncer(opts.Debounce, b.flush)
	return b
}

// Dial connects to the broker in cfg and returns a bridge bound to it.
// The availability topic carries a retained "offline" will.
func Dial(cfg config.MQTTConfig, w Writer, opts Options, log *zap.Logger) (*Bridge, error) {
	b := New(nil, w, opts, log)

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "luxtronik-" + uuid.NewString()[:8]
	}

	o := paho.NewClientOptions()
	o.AddBroker(cfg.Broker)
	o.SetClientID(clientID)
	o.SetUsername(cfg.Username)
	o.SetPassword(cfg.Password)
	o.SetAutoReconnect(true)
	o.SetConnectRetry(true)
	o.SetConnectRetryInterval(2 * time.Second)
	o.SetMaxReconnectInterval(30 * time.Second)
	o.SetWill(b.Topic("availability"), payloadOffline, b.opts.QoS, true)

	o.OnConnect = func(paho.Client) {
		b.log.Info("mqtt connected", zap.String("broker", cfg.Broker), zap.String("client_id", clientID))
		b.onConnect()
	}
	o.OnConnectionLost = func(_ paho.Client, err error) {
		b.log.Warn("mqtt connection lost", zap.String("broker", cfg.Broker), zap.Error(err))
	}

	client := paho.NewClient(o)
	b.mu.Lock()
	b.broker = client
	b.client = client
	b.mu.Unlock()

	t := client.Connect()
	if !t.WaitTimeout(connectTimeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("mqtt: connect %s: timeout", cfg.Broker)
	}
	if err := t.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", cfg.Broker, err)
	}
	return b, nil
}

// Topic joins the prefix and a suffix.
func (b *Bridge) Topic(suffix string) string {
	if b.opts.Prefix == "" {
		return suffix
	}
	return b.opts.Prefix + "/" + suffix
}

// Start subscribes to set requests and announces availability. Bridges
// built by Dial do this on every (re)connect.
func (b *Bridge) Start() {
	b.onConnect()
}

func (b *Bridge) onConnect() {
	br := b.currentBroker()
	if br == nil {
		return
	}
	// handlers must not block on tokens
	go b.await("subscribe", br.Subscribe(b.Topic("set/+"), b.opts.QoS, b.handleSet))
	go b.await("availability", br.Publish(b.Topic("availability"), b.opts.QoS, true, payloadOnline))
}

func (b *Bridge) await(what string, t paho.Token) {
	if !t.WaitTimeout(publishTimeout) {
		b.log.Warn("mqtt: timeout", zap.String("op", what))
		return
	}
	if err := t.Error(); err != nil {
		b.log.Warn("mqtt: failed", zap.String("op", what), zap.Error(err))
	}
}

func (b *Bridge) currentBroker() Broker {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	return b.broker
}

// ----------------------------------------------------------------
// Publishing
// ----------------------------------------------------------------

// Publish sends the snapshot and its derived state.
func (b *Bridge) Publish(snap luxtronik.Snapshot) error {
	if snap.IsZero() {
		return nil
	}

	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("mqtt: encode snapshot: %w", err)
	}
	state, err := json.Marshal(derive.ApplyWith(snap, b.opts.Tracker))
	if err != nil {
		return fmt.Errorf("mqtt: encode state: %w", err)
	}

	if err := b.publish("snapshot", doc); err != nil {
		return err
	}
	return b.publish("state", state)
}

func (b *Bridge) publish(suffix string, payload []byte) error {
	br := b.currentBroker()
	if br == nil {
		return ErrNotConnected
	}
	if b.client != nil && !b.client.IsConnectionOpen() {
		return ErrNotConnected
	}

	topic := b.Topic(suffix)
	t := br.Publish(topic, b.opts.QoS, b.opts.Retain, payload)
	if !t.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt: publish %s: timeout", topic)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("mqtt: publish %s: %w", topic, err)
	}
	return nil
}

// ----------------------------------------------------------------
// Set requests
// ----------------------------------------------------------------

func (b *Bridge) handleSet(_ paho.Client, msg paho.Message) {
	ref := strings.TrimPrefix(msg.Topic(), b.Topic("set/"))

	raw, err := strconv.ParseInt(strings.TrimSpace(string(msg.Payload())), 10, 32)
	if err != nil {
		b.log.Warn("mqtt: set payload is not an integer",
			zap.String("ref", ref), zap.ByteString("payload", msg.Payload()))
		return
	}

	r, err := b.reg.Resolve(ref)
	if err != nil {
		b.log.Warn("mqtt: set rejected", zap.String("ref", ref), zap.Error(err))
		return
	}
	if r.Section != registry.Parameters {
		b.log.Warn("mqtt: set rejected", zap.String("ref", ref), zap.Error(luxtronik.ErrNotParameter))
		return
	}

	// keyed by index so different spellings of one parameter coalesce
	b.debounce.Submit(strconv.Itoa(r.Index), int32(raw))
}

func (b *Bridge) flush(batch map[string]int32) {
	if b.writer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.opts.WriteTimeout)
	defer cancel()

	if _, err := b.writer.WriteMany(ctx, batch); err != nil {
		b.log.Warn("mqtt: write failed", zap.Int("values", len(batch)), zap.Error(err))
		return
	}
	b.log.Info("mqtt: write applied", zap.Int("values", len(batch)))
}

// Close flushes pending writes, marks the bridge offline and disconnects.
func (b *Bridge) Close() {
	b.debounce.Stop()

	br := b.currentBroker()
	if br == nil {
		return
	}
	b.await("unsubscribe", br.Unsubscribe(b.Topic("set/+")))
	b.await("availability", br.Publish(b.Topic("availability"), b.opts.QoS, true, payloadOffline))

	b.mu.Lock()
	b.closed = true
	client := b.client
	b.mu.Unlock()

	if client != nil {
		client.Disconnect(250)
	}
}

package natsbus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/wirebus/backend"
	"github.com/c360/wirebus/errors"
	"github.com/c360/wirebus/natsclient"
	"github.com/c360/wirebus/qos"
	"github.com/c360/wirebus/registry"
)

// ImplementationID identifies entities created by this backend
const ImplementationID = "wirebus_natsbus"

// DefaultSubjectPrefix is the root token for all wirebus subjects
const DefaultSubjectPrefix = "wirebus"

// Backend implements backend.Interface on a NATS connection
type Backend struct {
	client *natsclient.Client
	prefix string
	logger *slog.Logger

	mu      sync.Mutex
	matched map[string]map[registry.EntityKind]int
	closed  bool
}

// Option is a functional option for configuring the backend
type Option func(*options)

type options struct {
	prefix string
	logger *slog.Logger
}

// WithSubjectPrefix overrides the root subject token
func WithSubjectPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithLogger sets a custom logger for the backend
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates a NATS backend on an already configured client. The
// client must be connected before endpoints are created.
func New(client *natsclient.Client, opts ...Option) (*Backend, error) {
	if client == nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("client must not be nil"), "natsbus", "New", "client check")
	}

	o := &options{
		prefix: DefaultSubjectPrefix,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Backend{
		client:  client,
		prefix:  o.prefix,
		logger:  o.logger,
		matched: make(map[string]map[registry.EntityKind]int),
	}, nil
}

// SubjectFor maps a fully qualified topic name onto a NATS subject
func (b *Backend) SubjectFor(topic string) string {
	trimmed := strings.TrimPrefix(topic, "/")
	return b.prefix + "." + strings.ReplaceAll(trimmed, "/", ".")
}

// streamNameFor derives the JetStream stream name for a topic. Stream
// names may not contain dots, so subject tokens join with underscores.
func (b *Backend) streamNameFor(topic string) string {
	trimmed := strings.TrimPrefix(topic, "/")
	return strings.ToUpper(b.prefix) + "_" + strings.ReplaceAll(trimmed, "/", "_")
}

// ImplementationID implements backend.Interface
func (b *Backend) ImplementationID() string {
	return ImplementationID
}

// DefaultQoS implements backend.Interface
func (b *Backend) DefaultQoS() qos.Profile {
	return qos.DefaultProfile()
}

func (b *Backend) checkEndpoint(method string, info backend.EndpointInfo) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()

	if closed {
		return errors.WrapBackend(errors.ErrBackendFailure, "natsbus", method, "backend closed check")
	}
	if !info.QoS.IsResolved() {
		return errors.WrapBackend(
			fmt.Errorf("endpoint for %q carries unresolved qos", info.Topic),
			"natsbus", method, "qos check")
	}
	if info.QoS.History == qos.HistoryKeepAll && info.QoS.Durability == qos.DurabilityVolatile {
		return errors.WrapUnsupported(
			fmt.Errorf("keep-all history needs a durable endpoint on this backend"),
			"natsbus", method, "qos check")
	}
	return nil
}

func (b *Backend) trackMatch(topic string, kind registry.EntityKind, delta int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	byKind, ok := b.matched[topic]
	if !ok {
		byKind = make(map[registry.EntityKind]int)
		b.matched[topic] = byKind
	}
	byKind[kind] += delta
	if byKind[kind] <= 0 {
		delete(byKind, kind)
	}
	if len(byKind) == 0 {
		delete(b.matched, topic)
	}
}

// ensureStream provisions the JetStream stream backing a transient-local topic
func (b *Backend) ensureStream(ctx context.Context, info backend.EndpointInfo) error {
	cfg := jetstream.StreamConfig{
		Name:     b.streamNameFor(info.Topic),
		Subjects: []string{b.SubjectFor(info.Topic)},
	}
	if info.QoS.History == qos.HistoryKeepLast {
		cfg.MaxMsgsPerSubject = int64(info.QoS.Depth)
	}

	_, err := b.client.EnsureStream(ctx, cfg)
	return err
}

// CreatePublisher implements backend.Interface
func (b *Backend) CreatePublisher(ctx context.Context, info backend.EndpointInfo) (backend.Publisher, error) {
	if err := b.checkEndpoint("CreatePublisher", info); err != nil {
		return nil, err
	}

	durable := info.QoS.Durability == qos.DurabilityTransientLocal
	if durable {
		if err := b.ensureStream(ctx, info); err != nil {
			return nil, err
		}
	}

	pub := &publisher{
		backend:  b,
		topic:    info.Topic,
		subject:  b.SubjectFor(info.Topic),
		durable:  durable,
		reliable: info.QoS.Reliability == qos.ReliabilityReliable,
	}
	b.trackMatch(info.Topic, registry.KindPublisher, 1)
	b.logger.Debug("natsbus publisher created",
		"topic", info.Topic, "subject", pub.subject, "durable", durable, "node", info.Node)
	return pub, nil
}

// CreateSubscription implements backend.Interface
func (b *Backend) CreateSubscription(ctx context.Context, info backend.EndpointInfo) (backend.Subscription, error) {
	if err := b.checkEndpoint("CreateSubscription", info); err != nil {
		return nil, err
	}

	sub := &subscription{
		backend: b,
		topic:   info.Topic,
		queue:   newMsgQueue(info.QoS),
	}

	if info.QoS.Durability == qos.DurabilityTransientLocal {
		if err := b.ensureStream(ctx, info); err != nil {
			return nil, err
		}
		if err := sub.consumeStream(ctx, info); err != nil {
			return nil, err
		}
	} else {
		if err := sub.subscribeCore(info); err != nil {
			return nil, err
		}
	}

	b.trackMatch(info.Topic, registry.KindSubscription, 1)
	b.logger.Debug("natsbus subscription created",
		"topic", info.Topic, "subject", b.SubjectFor(info.Topic), "node", info.Node)
	return sub, nil
}

// CountMatched implements backend.Interface
func (b *Backend) CountMatched(topic string, kind registry.EntityKind) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, errors.WrapBackend(errors.ErrBackendFailure, "natsbus", "CountMatched", "backend closed check")
	}
	return b.matched[topic][kind], nil
}

// Close implements backend.Interface. The client connection is owned by
// the caller and stays open.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// publisher is a natsbus sending endpoint
type publisher struct {
	backend  *Backend
	topic    string
	subject  string
	durable  bool
	reliable bool

	mu     sync.Mutex
	closed bool
}

// Publish implements backend.Publisher. Durable endpoints publish
// through JetStream and wait for the stream ack. Volatile reliable
// endpoints publish on core NATS and then flush, confirming the server
// received the message. Best-effort endpoints are fire-and-forget.
func (p *publisher) Publish(ctx context.Context, data []byte) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.WrapBackend(errors.ErrBackendFailure, "natsbus", "Publish", "endpoint closed check")
	}
	p.mu.Unlock()

	if p.durable {
		js, err := p.backend.client.JetStream()
		if err != nil {
			return errors.WrapBackend(err, "natsbus", "Publish", "jetstream context")
		}
		if _, err := js.Publish(ctx, p.subject, data); err != nil {
			return errors.WrapBackend(err, "natsbus", "Publish", "stream publish")
		}
		return nil
	}

	if err := p.backend.client.Publish(ctx, p.subject, data); err != nil {
		return errors.WrapBackend(err, "natsbus", "Publish", "core publish")
	}
	if p.reliable {
		if err := p.backend.client.Flush(ctx); err != nil {
			return errors.WrapBackend(err, "natsbus", "Publish", "delivery confirmation")
		}
	}
	return nil
}

// Close implements backend.Publisher
func (p *publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.backend.trackMatch(p.topic, registry.KindPublisher, -1)
	return nil
}

// subscription is a natsbus receiving endpoint
type subscription struct {
	backend *Backend
	topic   string
	queue   *msgQueue

	natsSub    *nats.Subscription
	consumeCtx jetstream.ConsumeContext

	mu     sync.Mutex
	closed bool
}

// subscribeCore attaches a core NATS subscription feeding the queue
func (s *subscription) subscribeCore(info backend.EndpointInfo) error {
	conn := s.backend.client.Connection()
	if conn == nil || !conn.IsConnected() {
		return errors.WrapBackend(natsclient.ErrNotConnected, "natsbus", "CreateSubscription", "connection check")
	}

	sub, err := conn.Subscribe(s.backend.SubjectFor(info.Topic), func(msg *nats.Msg) {
		s.queue.push(msg.Data)
	})
	if err != nil {
		return errors.WrapBackend(err, "natsbus", "CreateSubscription", "core subscribe")
	}
	s.natsSub = sub
	return nil
}

// consumeStream attaches a JetStream consumer feeding the queue. The
// consumer replays from the start of the stream so a late joiner sees
// retained history.
func (s *subscription) consumeStream(ctx context.Context, info backend.EndpointInfo) error {
	js, err := s.backend.client.JetStream()
	if err != nil {
		return errors.WrapBackend(err, "natsbus", "CreateSubscription", "jetstream context")
	}

	consumer, err := js.CreateOrUpdateConsumer(ctx, s.backend.streamNameFor(info.Topic), jetstream.ConsumerConfig{
		FilterSubject: s.backend.SubjectFor(info.Topic),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return errors.WrapBackend(err, "natsbus", "CreateSubscription", "create consumer")
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		s.queue.push(msg.Data())
		_ = msg.Ack()
	})
	if err != nil {
		return errors.WrapBackend(err, "natsbus", "CreateSubscription", "start consumer")
	}
	s.consumeCtx = consumeCtx
	return nil
}

// Take implements backend.Subscription
func (s *subscription) Take(ctx context.Context) ([]byte, bool, error) {
	return s.queue.wait(ctx)
}

// TryTake implements backend.Subscription
func (s *subscription) TryTake() ([]byte, bool, error) {
	data, ok := s.queue.pop()
	return data, ok, nil
}

// Close implements backend.Subscription
func (s *subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.consumeCtx != nil {
		s.consumeCtx.Stop()
	}
	if s.natsSub != nil {
		if err := s.natsSub.Unsubscribe(); err != nil {
			return errors.WrapBackend(err, "natsbus", "Close", "unsubscribe")
		}
	}
	s.backend.trackMatch(s.topic, registry.KindSubscription, -1)
	return nil
}

// msgQueue is the per-subscription history buffer. KeepLast drops the
// oldest message once depth is exceeded.
type msgQueue struct {
	mu      sync.Mutex
	items   [][]byte
	depth   int
	keepAll bool
	notify  chan struct{}
}

func newMsgQueue(p qos.Profile) *msgQueue {
	return &msgQueue{
		depth:   p.Depth,
		keepAll: p.History == qos.HistoryKeepAll,
		notify:  make(chan struct{}, 1),
	}
}

func (q *msgQueue) push(data []byte) {
	q.mu.Lock()
	if !q.keepAll && len(q.items) >= q.depth && q.depth > 0 {
		q.items = q.items[1:]
	}
	q.items = append(q.items, data)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *msgQueue) pop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}

func (q *msgQueue) wait(ctx context.Context) ([]byte, bool, error) {
	for {
		if data, ok := q.pop(); ok {
			return data, true, nil
		}
		select {
		case <-ctx.Done():
			return nil, false, nil
		case <-q.notify:
		}
	}
}

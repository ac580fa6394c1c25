package channelbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	wmmessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/c360/wirebus/backend"
	"github.com/c360/wirebus/errors"
	"github.com/c360/wirebus/qos"
	"github.com/c360/wirebus/registry"
)

// ImplementationID identifies entities created by this backend
const ImplementationID = "wirebus_channelbus"

// Backend implements backend.Interface on watermill GoChannel pub/sub
type Backend struct {
	volatileBus *gochannel.GoChannel
	durableBus  *gochannel.GoChannel
	logger      *slog.Logger

	mu      sync.Mutex
	matched map[string]map[registry.EntityKind]int
	closed  bool
}

// Option is a functional option for configuring the backend
type Option func(*options)

type options struct {
	logger        *slog.Logger
	channelBuffer int64
}

// WithLogger sets a custom logger for the backend
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithChannelBuffer sets the per-subscriber output channel buffer
func WithChannelBuffer(size int64) Option {
	return func(o *options) {
		o.channelBuffer = size
	}
}

// New creates an in-process backend
func New(opts ...Option) *Backend {
	o := &options{
		logger:        slog.Default(),
		channelBuffer: 64,
	}
	for _, opt := range opts {
		opt(o)
	}

	wmLogger := watermill.NopLogger{}
	return &Backend{
		volatileBus: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: o.channelBuffer},
			wmLogger,
		),
		durableBus: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: o.channelBuffer, Persistent: true},
			wmLogger,
		),
		logger:  o.logger,
		matched: make(map[string]map[registry.EntityKind]int),
	}
}

// ImplementationID implements backend.Interface
func (b *Backend) ImplementationID() string {
	return ImplementationID
}

// DefaultQoS implements backend.Interface
func (b *Backend) DefaultQoS() qos.Profile {
	return qos.DefaultProfile()
}

// busFor selects the pub/sub instance for an endpoint's durability
func (b *Backend) busFor(p qos.Profile) *gochannel.GoChannel {
	if p.Durability == qos.DurabilityTransientLocal {
		return b.durableBus
	}
	return b.volatileBus
}

func (b *Backend) checkOpen(component, method string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errors.WrapBackend(errors.ErrBackendFailure, component, method, "backend closed check")
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

// CreatePublisher implements backend.Interface
func (b *Backend) CreatePublisher(_ context.Context, info backend.EndpointInfo) (backend.Publisher, error) {
	if err := b.checkOpen("channelbus", "CreatePublisher"); err != nil {
		return nil, err
	}
	if !info.QoS.IsResolved() {
		return nil, errors.WrapBackend(
			fmt.Errorf("endpoint for %q carries unresolved qos", info.Topic),
			"channelbus", "CreatePublisher", "qos check")
	}

	pub := &publisher{
		backend: b,
		bus:     b.busFor(info.QoS),
		topic:   info.Topic,
	}
	b.trackMatch(info.Topic, registry.KindPublisher, 1)
	b.logger.Debug("channelbus publisher created", "topic", info.Topic, "node", info.Node)
	return pub, nil
}

// CreateSubscription implements backend.Interface
func (b *Backend) CreateSubscription(_ context.Context, info backend.EndpointInfo) (backend.Subscription, error) {
	if err := b.checkOpen("channelbus", "CreateSubscription"); err != nil {
		return nil, err
	}
	if !info.QoS.IsResolved() {
		return nil, errors.WrapBackend(
			fmt.Errorf("endpoint for %q carries unresolved qos", info.Topic),
			"channelbus", "CreateSubscription", "qos check")
	}

	subCtx, cancel := context.WithCancel(context.Background())
	ch, err := b.busFor(info.QoS).Subscribe(subCtx, info.Topic)
	if err != nil {
		cancel()
		return nil, errors.WrapBackend(err, "channelbus", "CreateSubscription", "channel subscribe")
	}

	sub := &subscription{
		backend: b,
		topic:   info.Topic,
		cancel:  cancel,
		queue:   newMsgQueue(info.QoS),
	}
	go sub.pump(ch)

	b.trackMatch(info.Topic, registry.KindSubscription, 1)
	b.logger.Debug("channelbus subscription created", "topic", info.Topic, "node", info.Node)
	return sub, nil
}

// CountMatched implements backend.Interface
func (b *Backend) CountMatched(topic string, kind registry.EntityKind) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, errors.WrapBackend(errors.ErrBackendFailure, "channelbus", "CountMatched", "backend closed check")
	}
	return b.matched[topic][kind], nil
}

// Close implements backend.Interface
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if err := b.volatileBus.Close(); err != nil {
		return errors.WrapBackend(err, "channelbus", "Close", "volatile bus close")
	}
	if err := b.durableBus.Close(); err != nil {
		return errors.WrapBackend(err, "channelbus", "Close", "durable bus close")
	}
	return nil
}

// publisher is a channelbus sending endpoint
type publisher struct {
	backend *Backend
	bus     *gochannel.GoChannel
	topic   string

	mu     sync.Mutex
	closed bool
}

// Publish implements backend.Publisher
func (p *publisher) Publish(_ context.Context, data []byte) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.WrapBackend(errors.ErrBackendFailure, "channelbus", "Publish", "endpoint closed check")
	}
	p.mu.Unlock()

	msg := wmmessage.NewMessage(watermill.NewUUID(), data)
	if err := p.bus.Publish(p.topic, msg); err != nil {
		return errors.WrapBackend(err, "channelbus", "Publish", "channel publish")
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

// subscription is a channelbus receiving endpoint
type subscription struct {
	backend *Backend
	topic   string
	cancel  context.CancelFunc
	queue   *msgQueue

	mu     sync.Mutex
	closed bool
}

// pump moves messages from the watermill channel into the history queue
func (s *subscription) pump(ch <-chan *wmmessage.Message) {
	for msg := range ch {
		msg.Ack()
		s.queue.push(msg.Payload)
	}
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
	s.cancel()
	s.backend.trackMatch(s.topic, registry.KindSubscription, -1)
	return nil
}

// msgQueue is the per-subscription history buffer. KeepLast drops the
// oldest message once depth is exceeded; KeepAll grows without bound,
// limited only by process memory.
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

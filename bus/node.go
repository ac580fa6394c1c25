package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/c360/wirebus/backend"
	"github.com/c360/wirebus/errors"
	"github.com/c360/wirebus/message"
	"github.com/c360/wirebus/names"
	"github.com/c360/wirebus/qos"
	"github.com/c360/wirebus/registry"
)

// Node is a participant in the communication graph. Publishers and
// subscriptions are created through a node and expanded against its
// namespace.
//
// ImplementationID is deliberately an exported field rather than a
// method: lifecycle operations compare it by value against the serving
// backend, and tests exercise the mismatch path by overwriting it.
type Node struct {
	ID               string
	Name             string
	Namespace        string
	ImplementationID string

	ctx *Context
}

// FullyQualifiedName returns the node name joined to its namespace
func (n *Node) FullyQualifiedName() string {
	if n.Namespace == "/" {
		return "/" + n.Name
	}
	return n.Namespace + "/" + n.Name
}

// checkNode verifies the node handle before any lifecycle operation
func (n *Node) checkNode(method string) error {
	if n == nil {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "Node", method, "node validation")
	}
	if n.ImplementationID != n.ctx.backend.ImplementationID() {
		return errors.WrapIncorrectImplementation(
			errors.ErrIncorrectImplementation, "Node", method, "implementation check")
	}
	return nil
}

// resolveTopic validates a topic name and produces the fully qualified
// form. Native names skip namespace expansion and are used verbatim, so
// a relative native name is rejected: nothing can make it globally
// addressable.
func (n *Node) resolveTopic(name string, native bool) (string, error) {
	if err := names.ValidateTopicName(name); err != nil {
		return "", err
	}
	if native {
		if !names.IsAbsolute(name) {
			return "", errors.WrapInvalid(
				fmt.Errorf("relative topic name %q needs namespace expansion", name),
				"Node", "resolveTopic", "native name check")
		}
		return name, nil
	}
	return names.ExpandTopic(name, n.Namespace)
}

// CreatePublisher creates a sending endpoint on a topic. Argument
// checks run in a fixed order so a call with several defects always
// reports the same one: node, type support, options, topic, QoS.
// Options precede the topic because the native flag in the requested
// profile decides how the name resolves.
func (n *Node) CreatePublisher(
	ctx context.Context, ts *message.TypeSupport, topic string, opts *PublisherOptions,
) (*Publisher, error) {
	start := time.Now()

	if err := n.checkNode("CreatePublisher"); err != nil {
		if n == nil {
			return nil, err
		}
		return nil, n.ctx.record(err)
	}

	if err := n.ctx.checkUsable("CreatePublisher"); err != nil {
		return nil, n.ctx.record(err)
	}
	if err := ts.Validate(); err != nil {
		return nil, n.ctx.record(err)
	}
	if opts == nil {
		return nil, n.ctx.record(errors.WrapInvalid(
			errors.ErrInvalidArgument, "Node", "CreatePublisher", "options validation"))
	}

	fqn, err := n.resolveTopic(topic, opts.QoS.AvoidNamespaceConventions)
	if err != nil {
		return nil, n.ctx.record(err)
	}

	requested := opts.QoS
	if err := qos.ValidateProfile(&requested); err != nil {
		return nil, n.ctx.record(err)
	}
	resolved, err := n.ctx.resolveQoS(requested)
	if err != nil {
		return nil, n.ctx.record(err)
	}

	endpoint, err := n.ctx.backend.CreatePublisher(ctx, endpointInfo(fqn, ts, resolved, n))
	if err != nil {
		return nil, n.ctx.record(err)
	}

	pub := &Publisher{
		ID:               uuid.NewString(),
		Topic:            fqn,
		TypeSupport:      ts,
		ImplementationID: n.ctx.backend.ImplementationID(),
		actual:           resolved,
		endpoint:         endpoint,
		node:             n,
	}

	if err := n.ctx.registry.Insert(registry.Entry{
		ID:               pub.ID,
		Kind:             registry.KindPublisher,
		Topic:            fqn,
		NodeID:           n.ID,
		ImplementationID: pub.ImplementationID,
	}); err != nil {
		_ = endpoint.Close()
		return nil, n.ctx.record(err)
	}

	n.ctx.metrics.RecordEntityCreated(registry.KindPublisher.String(), pub.ImplementationID)
	n.ctx.metrics.RecordCreateDuration(registry.KindPublisher.String(), time.Since(start))
	n.ctx.graph.Trigger()
	n.ctx.logger.Debug("publisher created", "topic", fqn, "node", n.Name, "id", pub.ID)
	return pub, nil
}

// CreateSubscription creates a receiving endpoint on a topic. Argument
// checks run in the same fixed order as CreatePublisher: node, type
// support, options, topic, QoS.
func (n *Node) CreateSubscription(
	ctx context.Context, ts *message.TypeSupport, topic string, opts *SubscriptionOptions,
) (*Subscription, error) {
	start := time.Now()

	if err := n.checkNode("CreateSubscription"); err != nil {
		if n == nil {
			return nil, err
		}
		return nil, n.ctx.record(err)
	}

	if err := n.ctx.checkUsable("CreateSubscription"); err != nil {
		return nil, n.ctx.record(err)
	}
	if err := ts.Validate(); err != nil {
		return nil, n.ctx.record(err)
	}
	if opts == nil {
		return nil, n.ctx.record(errors.WrapInvalid(
			errors.ErrInvalidArgument, "Node", "CreateSubscription", "options validation"))
	}

	fqn, err := n.resolveTopic(topic, opts.QoS.AvoidNamespaceConventions)
	if err != nil {
		return nil, n.ctx.record(err)
	}

	requested := opts.QoS
	if err := qos.ValidateProfile(&requested); err != nil {
		return nil, n.ctx.record(err)
	}
	resolved, err := n.ctx.resolveQoS(requested)
	if err != nil {
		return nil, n.ctx.record(err)
	}

	endpoint, err := n.ctx.backend.CreateSubscription(ctx, endpointInfo(fqn, ts, resolved, n))
	if err != nil {
		return nil, n.ctx.record(err)
	}

	sub := &Subscription{
		ID:               uuid.NewString(),
		Topic:            fqn,
		TypeSupport:      ts,
		ImplementationID: n.ctx.backend.ImplementationID(),
		actual:           resolved,
		endpoint:         endpoint,
		node:             n,
	}

	if err := n.ctx.registry.Insert(registry.Entry{
		ID:               sub.ID,
		Kind:             registry.KindSubscription,
		Topic:            fqn,
		NodeID:           n.ID,
		ImplementationID: sub.ImplementationID,
	}); err != nil {
		_ = endpoint.Close()
		return nil, n.ctx.record(err)
	}

	n.ctx.metrics.RecordEntityCreated(registry.KindSubscription.String(), sub.ImplementationID)
	n.ctx.metrics.RecordCreateDuration(registry.KindSubscription.String(), time.Since(start))
	n.ctx.graph.Trigger()
	n.ctx.logger.Debug("subscription created", "topic", fqn, "node", n.Name, "id", sub.ID)
	return sub, nil
}

// DestroyPublisher destroys a publisher owned by this node. Not
// idempotent; destroying the same handle twice is a caller error.
// The backend endpoint closes before the registry entry goes away, so
// a failed close leaves the handle registered and a retry possible.
func (n *Node) DestroyPublisher(pub *Publisher) error {
	if err := n.checkNode("DestroyPublisher"); err != nil {
		if n == nil {
			return err
		}
		return n.ctx.record(err)
	}

	if pub == nil {
		return n.ctx.record(errors.WrapInvalid(
			errors.ErrInvalidArgument, "Node", "DestroyPublisher", "publisher validation"))
	}
	if pub.ImplementationID != n.ctx.backend.ImplementationID() {
		return n.ctx.record(errors.WrapIncorrectImplementation(
			errors.ErrIncorrectImplementation, "Node", "DestroyPublisher", "implementation check"))
	}

	if !n.ctx.registry.Contains(pub.ID) {
		return n.ctx.record(errors.WrapInvalid(
			fmt.Errorf("publisher '%s': %w", pub.ID, errors.ErrNotRegistered),
			"Node", "DestroyPublisher", "registration check"))
	}
	if err := pub.endpoint.Close(); err != nil {
		return n.ctx.record(errors.WrapBackend(err, "Node", "DestroyPublisher", "endpoint close"))
	}
	if err := n.ctx.registry.Remove(pub.ID); err != nil {
		return n.ctx.record(err)
	}

	n.ctx.metrics.RecordEntityDestroyed(registry.KindPublisher.String(), pub.ImplementationID)
	n.ctx.graph.Trigger()
	n.ctx.logger.Debug("publisher destroyed", "topic", pub.Topic, "id", pub.ID)
	return nil
}

// DestroySubscription destroys a subscription owned by this node. Not
// idempotent; destroying the same handle twice is a caller error.
// The backend endpoint closes before the registry entry goes away, so
// a failed close leaves the handle registered and a retry possible.
func (n *Node) DestroySubscription(sub *Subscription) error {
	if err := n.checkNode("DestroySubscription"); err != nil {
		if n == nil {
			return err
		}
		return n.ctx.record(err)
	}

	if sub == nil {
		return n.ctx.record(errors.WrapInvalid(
			errors.ErrInvalidArgument, "Node", "DestroySubscription", "subscription validation"))
	}
	if sub.ImplementationID != n.ctx.backend.ImplementationID() {
		return n.ctx.record(errors.WrapIncorrectImplementation(
			errors.ErrIncorrectImplementation, "Node", "DestroySubscription", "implementation check"))
	}

	if !n.ctx.registry.Contains(sub.ID) {
		return n.ctx.record(errors.WrapInvalid(
			fmt.Errorf("subscription '%s': %w", sub.ID, errors.ErrNotRegistered),
			"Node", "DestroySubscription", "registration check"))
	}
	if err := sub.endpoint.Close(); err != nil {
		return n.ctx.record(errors.WrapBackend(err, "Node", "DestroySubscription", "endpoint close"))
	}
	if err := n.ctx.registry.Remove(sub.ID); err != nil {
		return n.ctx.record(err)
	}

	n.ctx.metrics.RecordEntityDestroyed(registry.KindSubscription.String(), sub.ImplementationID)
	n.ctx.graph.Trigger()
	n.ctx.logger.Debug("subscription destroyed", "topic", sub.Topic, "id", sub.ID)
	return nil
}

// CountMatchedPublishers reports how many publishers the backend
// matches on a topic. Relative names expand against the node namespace.
func (n *Node) CountMatchedPublishers(topic string) (int, error) {
	if err := n.checkNode("CountMatchedPublishers"); err != nil {
		return 0, err
	}
	fqn, err := names.ExpandTopic(topic, n.Namespace)
	if err != nil {
		return 0, n.ctx.record(err)
	}
	return n.ctx.backend.CountMatched(fqn, registry.KindPublisher)
}

// CountMatchedSubscriptions reports how many subscriptions the backend
// matches on a topic. Relative names expand against the node namespace.
func (n *Node) CountMatchedSubscriptions(topic string) (int, error) {
	if err := n.checkNode("CountMatchedSubscriptions"); err != nil {
		return 0, err
	}
	fqn, err := names.ExpandTopic(topic, n.Namespace)
	if err != nil {
		return 0, n.ctx.record(err)
	}
	return n.ctx.backend.CountMatched(fqn, registry.KindSubscription)
}

// endpointInfo assembles the descriptor handed to the backend
func endpointInfo(topic string, ts *message.TypeSupport, resolved qos.Profile, n *Node) backend.EndpointInfo {
	return backend.EndpointInfo{
		Topic:       topic,
		TypeSupport: ts,
		QoS:         resolved,
		Node:        fmt.Sprintf("%s (%s)", n.FullyQualifiedName(), n.ID),
	}
}

package bus

import (
	"context"

	"github.com/c360/wirebus/backend"
	"github.com/c360/wirebus/errors"
	"github.com/c360/wirebus/message"
	"github.com/c360/wirebus/qos"
)

// Publisher is a sending endpoint on a topic. It is created and
// destroyed through its owning node.
//
// ImplementationID is an exported field for the same reason as on Node:
// the mismatch path must be reachable from tests.
type Publisher struct {
	ID               string
	Topic            string
	TypeSupport      *message.TypeSupport
	ImplementationID string

	actual   qos.Profile
	endpoint backend.Publisher
	node     *Node
}

// checkHandle verifies the publisher before any operation
func (p *Publisher) checkHandle(method string) error {
	if p == nil {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "Publisher", method, "publisher validation")
	}
	if p.ImplementationID != p.node.ctx.backend.ImplementationID() {
		return p.node.ctx.record(errors.WrapIncorrectImplementation(
			errors.ErrIncorrectImplementation, "Publisher", method, "implementation check"))
	}
	return nil
}

// ActualQoS returns the concrete profile the publisher was created
// with. Every field is resolved; sentinels never appear here. Stable
// across calls: the profile is recorded at creation, not re-derived.
func (p *Publisher) ActualQoS() (qos.Profile, error) {
	if err := p.checkHandle("ActualQoS"); err != nil {
		return qos.Profile{}, err
	}
	return p.actual, nil
}

// Publish encodes a message and sends it on the topic
func (p *Publisher) Publish(ctx context.Context, msg any) error {
	if err := p.checkHandle("Publish"); err != nil {
		return err
	}
	if msg == nil {
		return p.node.ctx.record(errors.WrapInvalid(
			errors.ErrInvalidArgument, "Publisher", "Publish", "message validation"))
	}

	data, err := p.TypeSupport.Encode(msg)
	if err != nil {
		return p.node.ctx.record(errors.WrapInvalid(err, "Publisher", "Publish", "message encoding"))
	}
	if err := p.endpoint.Publish(ctx, data); err != nil {
		return p.node.ctx.record(err)
	}

	p.node.ctx.metrics.RecordMessagePublished(p.Topic)
	return nil
}

// PublishSerialized sends a message already in wire form, bypassing the
// type support encoder
func (p *Publisher) PublishSerialized(ctx context.Context, msg *message.Serialized) error {
	if err := p.checkHandle("PublishSerialized"); err != nil {
		return err
	}
	if msg == nil {
		return p.node.ctx.record(errors.WrapInvalid(
			errors.ErrInvalidArgument, "Publisher", "PublishSerialized", "message validation"))
	}

	if err := p.endpoint.Publish(ctx, msg.Bytes()); err != nil {
		return p.node.ctx.record(err)
	}

	p.node.ctx.metrics.RecordMessagePublished(p.Topic)
	return nil
}

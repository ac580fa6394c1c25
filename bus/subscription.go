package bus

import (
	"context"

	"github.com/c360/wirebus/backend"
	"github.com/c360/wirebus/errors"
	"github.com/c360/wirebus/message"
	"github.com/c360/wirebus/qos"
)

// Subscription is a receiving endpoint on a topic. It is created and
// destroyed through its owning node.
type Subscription struct {
	ID               string
	Topic            string
	TypeSupport      *message.TypeSupport
	ImplementationID string

	actual   qos.Profile
	endpoint backend.Subscription
	node     *Node
}

// checkHandle verifies the subscription before any operation
func (s *Subscription) checkHandle(method string) error {
	if s == nil {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "Subscription", method, "subscription validation")
	}
	if s.ImplementationID != s.node.ctx.backend.ImplementationID() {
		return s.node.ctx.record(errors.WrapIncorrectImplementation(
			errors.ErrIncorrectImplementation, "Subscription", method, "implementation check"))
	}
	return nil
}

// ActualQoS returns the concrete profile the subscription was created
// with. Every field is resolved; sentinels never appear here. Stable
// across calls: the profile is recorded at creation, not re-derived.
func (s *Subscription) ActualQoS() (qos.Profile, error) {
	if err := s.checkHandle("ActualQoS"); err != nil {
		return qos.Profile{}, err
	}
	return s.actual, nil
}

// Take blocks until a message arrives or ctx ends, then decodes it.
// taken is false with a nil error when ctx ended first.
func (s *Subscription) Take(ctx context.Context) (msg any, taken bool, err error) {
	if err := s.checkHandle("Take"); err != nil {
		return nil, false, err
	}

	data, taken, err := s.endpoint.Take(ctx)
	if err != nil {
		return nil, false, s.node.ctx.record(err)
	}
	if !taken {
		return nil, false, nil
	}

	decoded, err := s.TypeSupport.Decode(data)
	if err != nil {
		return nil, false, s.node.ctx.record(errors.WrapInvalid(
			err, "Subscription", "Take", "message decoding"))
	}

	s.node.ctx.metrics.RecordMessageTaken(s.Topic)
	return decoded, true, nil
}

// TryTake decodes a pending message without blocking. taken is false
// when nothing was pending.
func (s *Subscription) TryTake() (msg any, taken bool, err error) {
	if err := s.checkHandle("TryTake"); err != nil {
		return nil, false, err
	}

	data, taken, err := s.endpoint.TryTake()
	if err != nil {
		return nil, false, s.node.ctx.record(err)
	}
	if !taken {
		return nil, false, nil
	}

	decoded, err := s.TypeSupport.Decode(data)
	if err != nil {
		return nil, false, s.node.ctx.record(errors.WrapInvalid(
			err, "Subscription", "TryTake", "message decoding"))
	}

	s.node.ctx.metrics.RecordMessageTaken(s.Topic)
	return decoded, true, nil
}

// TakeSerialized copies the next message in wire form into out without
// decoding it. taken is false with a nil error when ctx ended first.
func (s *Subscription) TakeSerialized(ctx context.Context, out *message.Serialized) (taken bool, err error) {
	if err := s.checkHandle("TakeSerialized"); err != nil {
		return false, err
	}
	if out == nil {
		return false, s.node.ctx.record(errors.WrapInvalid(
			errors.ErrInvalidArgument, "Subscription", "TakeSerialized", "buffer validation"))
	}

	data, taken, err := s.endpoint.Take(ctx)
	if err != nil {
		return false, s.node.ctx.record(err)
	}
	if !taken {
		return false, nil
	}

	if err := out.SetData(data); err != nil {
		return false, s.node.ctx.record(err)
	}

	s.node.ctx.metrics.RecordMessageTaken(s.Topic)
	return true, nil
}

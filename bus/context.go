package bus

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c360/wirebus/backend"
	"github.com/c360/wirebus/errors"
	"github.com/c360/wirebus/message"
	"github.com/c360/wirebus/metric"
	"github.com/c360/wirebus/names"
	"github.com/c360/wirebus/qos"
	"github.com/c360/wirebus/registry"
)

// contextState tracks the lifecycle of a Context
type contextState int

const (
	stateValid contextState = iota
	stateShutdown
	stateFinalized
)

// Context is a middleware session bound to one backend. All entities
// created through it share its registry, error sink, and allocator.
type Context struct {
	backend  backend.Interface
	registry *registry.Registry
	errs     *errors.State
	alloc    message.Allocator
	logger   *slog.Logger
	metrics  *metric.Metrics
	graph    *GraphGuard
	enclave  string

	mu    sync.Mutex
	state contextState
}

// NewContext creates a session on the given backend
func NewContext(b backend.Interface, opts InitOptions) (*Context, error) {
	if b == nil {
		return nil, errors.WrapInvalid(
			errors.ErrInvalidArgument, "Context", "NewContext", "backend validation")
	}

	defaults := DefaultInitOptions()
	if opts.Enclave == "" {
		opts.Enclave = defaults.Enclave
	}
	if opts.Allocator == nil {
		opts.Allocator = defaults.Allocator
	}
	if opts.Logger == nil {
		opts.Logger = defaults.Logger
	}

	if !b.DefaultQoS().IsResolved() {
		return nil, errors.WrapUnsupported(
			fmt.Errorf("backend %q offers a non-concrete default profile", b.ImplementationID()),
			"Context", "NewContext", "backend default qos check")
	}

	ctx := &Context{
		backend:  b,
		registry: registry.New(),
		errs:     errors.NewState(),
		alloc:    opts.Allocator,
		logger:   opts.Logger,
		metrics:  opts.Metrics.CoreMetrics(),
		graph:    NewGraphGuard(),
		enclave:  opts.Enclave,
		state:    stateValid,
	}

	ctx.logger.Info("wirebus context created",
		"backend", b.ImplementationID(), "enclave", ctx.enclave)
	return ctx, nil
}

// ImplementationID returns the identifier of the serving backend
func (c *Context) ImplementationID() string {
	return c.backend.ImplementationID()
}

// Enclave returns the enclave name the session runs in
func (c *Context) Enclave() string {
	return c.enclave
}

// Errors returns the session error sink. Lifecycle failures are
// recorded here in addition to being returned.
func (c *Context) Errors() *errors.State {
	return c.errs
}

// record stores the failure in the session error sink and counts it by
// class before handing it back to the caller
func (c *Context) record(err error) error {
	c.metrics.RecordError(errors.Classify(err).String())
	return c.errs.Record(err)
}

// Graph returns the guard triggered on entity membership changes
func (c *Context) Graph() *GraphGuard {
	return c.graph
}

// LiveEntities returns the number of entities currently registered
func (c *Context) LiveEntities() int {
	return c.registry.Len()
}

// checkUsable rejects entity creation on a context past its lifetime
func (c *Context) checkUsable(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateValid:
		return nil
	case stateShutdown:
		return errors.WrapInvalid(errors.ErrShuttingDown, "Context", method, "state check")
	default:
		return errors.WrapInvalid(errors.ErrInvalidContext, "Context", method, "state check")
	}
}

// Shutdown moves the context out of its usable state. Entities that
// already exist keep working until destroyed; new ones cannot be
// created. Shutting down twice is an error.
func (c *Context) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateValid {
		return c.record(errors.WrapInvalid(
			errors.ErrInvalidContext, "Context", "Shutdown", "state check"))
	}
	c.state = stateShutdown
	c.logger.Info("wirebus context shut down", "backend", c.backend.ImplementationID())
	return nil
}

// Finalize releases the context. It requires a prior Shutdown and fails
// while entities are still alive; leaked entities are a caller bug that
// finalization refuses to paper over.
func (c *Context) Finalize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateValid:
		return c.record(errors.WrapInvalid(
			fmt.Errorf("context has not been shut down"),
			"Context", "Finalize", "state check"))
	case stateFinalized:
		return c.record(errors.WrapInvalid(
			errors.ErrInvalidContext, "Context", "Finalize", "state check"))
	}

	if live := c.registry.Len(); live > 0 {
		return c.record(errors.WrapInvalid(
			fmt.Errorf("%d entities still alive", live),
			"Context", "Finalize", "live entity check"))
	}

	if err := c.backend.Close(); err != nil {
		return c.record(errors.WrapBackend(err, "Context", "Finalize", "backend close"))
	}

	c.state = stateFinalized
	c.logger.Info("wirebus context finalized", "backend", c.backend.ImplementationID())
	return nil
}

// CreateNode creates a participant in the communication graph
func (c *Context) CreateNode(name, namespace string) (*Node, error) {
	start := time.Now()

	if err := c.checkUsable("CreateNode"); err != nil {
		return nil, c.record(err)
	}
	if err := names.ValidateNodeName(name); err != nil {
		return nil, c.record(err)
	}
	if err := names.ValidateNamespace(namespace); err != nil {
		return nil, c.record(err)
	}

	node := &Node{
		ID:               uuid.NewString(),
		Name:             name,
		Namespace:        namespace,
		ImplementationID: c.backend.ImplementationID(),
		ctx:              c,
	}

	if err := c.registry.Insert(registry.Entry{
		ID:               node.ID,
		Kind:             registry.KindNode,
		NodeID:           node.ID,
		ImplementationID: node.ImplementationID,
	}); err != nil {
		return nil, c.record(err)
	}

	c.metrics.RecordEntityCreated(registry.KindNode.String(), c.backend.ImplementationID())
	c.metrics.RecordCreateDuration(registry.KindNode.String(), time.Since(start))
	c.graph.Trigger()
	c.logger.Debug("node created", "name", name, "namespace", namespace, "id", node.ID)
	return node, nil
}

// DestroyNode destroys a node. The caller must destroy the node's
// publishers and subscriptions first; destruction is not idempotent.
func (c *Context) DestroyNode(node *Node) error {
	if node == nil {
		return c.record(errors.WrapInvalid(
			errors.ErrInvalidArgument, "Context", "DestroyNode", "node validation"))
	}
	if node.ImplementationID != c.backend.ImplementationID() {
		return c.record(errors.WrapIncorrectImplementation(
			errors.ErrIncorrectImplementation, "Context", "DestroyNode", "implementation check"))
	}

	if err := c.registry.Remove(node.ID); err != nil {
		return c.record(err)
	}

	c.metrics.RecordEntityDestroyed(registry.KindNode.String(), c.backend.ImplementationID())
	c.graph.Trigger()
	c.logger.Debug("node destroyed", "name", node.Name, "id", node.ID)
	return nil
}

// resolveQoS produces the concrete profile for a request against the
// backend's defaults
func (c *Context) resolveQoS(requested qos.Profile) (qos.Profile, error) {
	return qos.Resolve(requested, c.backend.DefaultQoS())
}

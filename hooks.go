package resources

import (
	"context"
	"sync"

	"github.com/kraenzle-ritter/resources/pkg/resource"
)

// Hook function types for resource events
type (
	// ResourceCreatedHook is called after a resource is inserted
	ResourceCreatedHook func(r resource.Resource)

	// ResourceUpdatedHook is called after an existing resource is rewritten
	ResourceUpdatedHook func(r resource.Resource)

	// ResourceDeletedHook is called after a resource is deleted
	ResourceDeletedHook func(r resource.Resource)
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// Hooks registers callbacks for resource events. Callbacks run
// synchronously, after the change is persisted.
type Hooks interface {
	OnResourceCreated(fn ResourceCreatedHook)
	OnResourceUpdated(fn ResourceUpdatedHook)
	OnResourceDeleted(fn ResourceDeletedHook)
}

// hooks manages event callbacks for resource changes
type hooks struct {
	mu        sync.RWMutex
	onCreated []ResourceCreatedHook
	onUpdated []ResourceUpdatedHook
	onDeleted []ResourceDeletedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnResourceCreated implements Hooks.
func (c *client) OnResourceCreated(fn ResourceCreatedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onCreated = append(c.hooks.onCreated, fn)
}

// OnResourceUpdated implements Hooks.
func (c *client) OnResourceUpdated(fn ResourceUpdatedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onUpdated = append(c.hooks.onUpdated, fn)
}

// OnResourceDeleted implements Hooks.
func (c *client) OnResourceDeleted(fn ResourceDeletedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onDeleted = append(c.hooks.onDeleted, fn)
}

// reconciled fires the created or updated hooks for r. It has the shape of
// a sync hook so the orchestrator can call it for every upsert.
func (h *hooks) reconciled(_ context.Context, r resource.Resource, created bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if created {
		for _, hook := range h.onCreated {
			hook(r)
		}
		return
	}
	for _, hook := range h.onUpdated {
		hook(r)
	}
}

// triggerDeleted fires the deleted hooks for r.
func (h *hooks) triggerDeleted(r resource.Resource) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onDeleted {
		hook(r)
	}
}

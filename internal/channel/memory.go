package channel

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// MemoryClient is an in-process channel for running the whole installation
// from a single binary, and the test double for everything channel-facing.
// Delivery is synchronous: Write returns after every subscriber ran.
type MemoryClient struct {
	mu     sync.RWMutex
	values map[string][]byte
	subs   map[string]map[string]Handler
	closed bool
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		values: make(map[string][]byte),
		subs:   make(map[string]map[string]Handler),
	}
}

func (c *MemoryClient) Write(_ context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.values[key] = payload
	handlers := make([]Handler, 0, len(c.subs[key]))
	for _, h := range c.subs[key] {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(key, payload)
	}
	return nil
}

func (c *MemoryClient) Subscribe(_ context.Context, key string, handler Handler) (func(), error) {
	c.mu.Lock()
	if c.subs[key] == nil {
		c.subs[key] = make(map[string]Handler)
	}
	id := uuid.NewString()
	c.subs[key][id] = handler
	current, ok := c.values[key]
	c.mu.Unlock()

	// Match the KV watch semantics: a new subscriber sees the current value.
	if ok {
		handler(key, current)
	}

	return func() {
		c.mu.Lock()
		delete(c.subs[key], id)
		c.mu.Unlock()
	}, nil
}

func (c *MemoryClient) Close() {
	c.mu.Lock()
	c.closed = true
	c.subs = make(map[string]map[string]Handler)
	c.mu.Unlock()
}

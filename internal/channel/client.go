// Package channel is the last-write-wins synchronization channel between the
// input surface and any number of display surfaces. It exposes exactly the
// two operations the surfaces need, writing the shared record and
// subscribing to it, so the backing technology stays swappable.
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Handler receives the raw payload of the latest write to a key.
type Handler func(key string, data []byte)

// Client is a shared-record store with last-write-wins semantics. Writes
// overwrite the record wholesale; subscribers see whichever write the store
// resolved as most recent. Subscribe returns an unsubscribe func.
type Client interface {
	Write(ctx context.Context, key string, value interface{}) error
	Subscribe(ctx context.Context, key string, handler Handler) (func(), error)
	Close()
}

// NATSClient backs the channel with a JetStream key-value bucket. History is
// kept at 1 so the bucket itself enforces last-write-wins.
type NATSClient struct {
	conn   *nats.Conn
	kv     jetstream.KeyValue
	logger *slog.Logger
}

func NewNATSClient(ctx context.Context, url, bucket string, logger *slog.Logger) (*NATSClient, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  bucket,
		History: 1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	return &NATSClient{conn: nc, kv: kv, logger: logger}, nil
}

func (c *NATSClient) Write(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = c.kv.Put(ctx, key, payload)
	return err
}

func (c *NATSClient) Subscribe(ctx context.Context, key string, handler Handler) (func(), error) {
	watcher, err := c.kv.Watch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", key, err)
	}

	go func() {
		for entry := range watcher.Updates() {
			// nil marks the end of the initial replay.
			if entry == nil {
				continue
			}
			if entry.Operation() != jetstream.KeyValuePut {
				continue
			}
			handler(entry.Key(), entry.Value())
		}
	}()

	return func() {
		if err := watcher.Stop(); err != nil {
			c.logger.Warn("failed to stop watcher", "key", key, "error", err)
		}
	}, nil
}

func (c *NATSClient) Close() {
	c.conn.Close()
}

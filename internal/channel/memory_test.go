package channel

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Yuki33825/x-music-bar/internal/recipe"
)

func TestMemoryClientWriteDeliversToSubscribers(t *testing.T) {
	c := NewMemoryClient()
	defer c.Close()
	ctx := context.Background()

	var got []VectorRecord
	unsub, err := c.Subscribe(ctx, KeyVector, func(_ string, data []byte) {
		var r VectorRecord
		if err := json.Unmarshal(data, &r); err != nil {
			t.Errorf("bad payload: %v", err)
			return
		}
		got = append(got, r)
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer unsub()

	rec := NewVectorRecord(recipe.DisplayVector{Sweetness: 80, Texture: 20}, "panel-1")
	if err := c.Write(ctx, KeyVector, rec); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(got))
	}
	if got[0].Sweetness != 80 || got[0].WriterID != "panel-1" {
		t.Errorf("unexpected record: %+v", got[0])
	}
	if got[0].UpdatedAt == 0 {
		t.Error("expected a write timestamp")
	}
}

func TestMemoryClientLastWriteWins(t *testing.T) {
	c := NewMemoryClient()
	defer c.Close()
	ctx := context.Background()

	_ = c.Write(ctx, KeyVector, VectorRecord{Sweetness: 10})
	_ = c.Write(ctx, KeyVector, VectorRecord{Sweetness: 90})

	// A late subscriber sees only the most recent write.
	var got VectorRecord
	deliveries := 0
	unsub, err := c.Subscribe(ctx, KeyVector, func(_ string, data []byte) {
		deliveries++
		_ = json.Unmarshal(data, &got)
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer unsub()

	if deliveries != 1 {
		t.Fatalf("expected 1 initial delivery, got %d", deliveries)
	}
	if got.Sweetness != 90 {
		t.Errorf("expected latest write (90), got %f", got.Sweetness)
	}
}

func TestMemoryClientUnsubscribe(t *testing.T) {
	c := NewMemoryClient()
	defer c.Close()
	ctx := context.Background()

	deliveries := 0
	unsub, err := c.Subscribe(ctx, KeyVector, func(string, []byte) { deliveries++ })
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	_ = c.Write(ctx, KeyVector, VectorRecord{})
	unsub()
	_ = c.Write(ctx, KeyVector, VectorRecord{})

	if deliveries != 1 {
		t.Errorf("expected 1 delivery before unsubscribe, got %d", deliveries)
	}
}

func TestMemoryClientCloseStopsDelivery(t *testing.T) {
	c := NewMemoryClient()
	ctx := context.Background()

	deliveries := 0
	_, err := c.Subscribe(ctx, KeyVector, func(string, []byte) { deliveries++ })
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	c.Close()
	_ = c.Write(ctx, KeyVector, VectorRecord{})

	if deliveries != 0 {
		t.Errorf("expected no deliveries after close, got %d", deliveries)
	}
}

func TestVectorRecordMissingFieldsDefaultToZero(t *testing.T) {
	// A malformed remote record with absent axes must decode to zeros, not
	// fail; the engine clamps from there.
	var r VectorRecord
	if err := json.Unmarshal([]byte(`{"sweetness": 42, "timestamp": 1700000000000}`), &r); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if r.Sweetness != 42 {
		t.Errorf("expected 42, got %f", r.Sweetness)
	}
	if r.Acidity != 0 || r.Bitterness != 0 || r.Intensity != 0 || r.Texture != 0 {
		t.Errorf("missing fields should default to 0: %+v", r)
	}
	d := r.DisplayVector()
	if d.Sweetness != 42 || d.Texture != 0 {
		t.Errorf("unexpected display vector: %+v", d)
	}
}

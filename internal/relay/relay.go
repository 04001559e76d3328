// Package relay sits between the synchronization channel and the display
// surfaces: every record that lands on the shared key is recomputed into a
// recipe and fanned out to subscribers. Throttling of drag-frequency updates
// lives here; the engine itself is invoked as often as records arrive unless
// the relay coalesces them.
package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Yuki33825/x-music-bar/internal/channel"
	"github.com/Yuki33825/x-music-bar/internal/config"
	"github.com/Yuki33825/x-music-bar/internal/recipe"
)

// Update pairs a synchronized record with the recipe computed from it.
type Update struct {
	Record     channel.VectorRecord `json:"record"`
	Recipe     recipe.Result        `json:"recipe"`
	ReceivedAt time.Time            `json:"received_at"`
}

// Stats is a point-in-time snapshot of relay activity.
type Stats struct {
	UpdatesReceived  int64      `json:"updates_received"`
	UpdatesDelivered int64      `json:"updates_delivered"`
	UpdatesCoalesced int64      `json:"updates_coalesced"`
	SubscriberDrops  int64      `json:"subscriber_drops"`
	Subscribers      int        `json:"subscribers"`
	LastUpdatedAt    *time.Time `json:"last_updated_at,omitempty"`
}

type Relay struct {
	channel channel.Client
	cfg     *config.Config
	logger  *slog.Logger

	engineMu sync.RWMutex
	engine   *recipe.Engine

	mu          sync.Mutex
	last        *Update
	pending     *Update
	lastDeliver time.Time
	received    int64
	delivered   int64
	coalesced   int64
	sendDrops   int64

	subsMu sync.RWMutex
	subs   map[string]chan Update

	unsub    func()
	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(ch channel.Client, engine *recipe.Engine, cfg *config.Config, logger *slog.Logger) *Relay {
	return &Relay{
		channel: ch,
		engine:  engine,
		cfg:     cfg,
		logger:  logger,
		subs:    make(map[string]chan Update),
		stopCh:  make(chan struct{}),
	}
}

// Start subscribes to the shared record and begins fan-out. The flush loop
// only runs when a minimum delivery interval is configured.
func (r *Relay) Start(ctx context.Context) error {
	unsub, err := r.channel.Subscribe(ctx, r.cfg.Channel.Key, r.onRecord)
	if err != nil {
		return err
	}
	r.unsub = unsub

	if r.cfg.MinInterval() > 0 {
		r.wg.Add(1)
		go r.flushLoop(ctx)
	}
	return nil
}

func (r *Relay) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
	if r.unsub != nil {
		r.unsub()
	}
}

// Engine returns the engine currently used for recomputation.
func (r *Relay) Engine() *recipe.Engine {
	r.engineMu.RLock()
	defer r.engineMu.RUnlock()
	return r.engine
}

// SetEngine swaps in a re-tuned engine. Each update is computed against
// whichever engine is current when it arrives.
func (r *Relay) SetEngine(e *recipe.Engine) {
	r.engineMu.Lock()
	r.engine = e
	r.engineMu.Unlock()
}

// Subscribe registers a display surface. Sends are non-blocking: a subscriber
// that cannot keep up loses intermediate updates, never the relay.
func (r *Relay) Subscribe() (string, <-chan Update, func()) {
	id := uuid.NewString()
	ch := make(chan Update, r.cfg.Relay.Buffer)

	r.subsMu.Lock()
	r.subs[id] = ch
	r.subsMu.Unlock()
	streamClients.Inc()

	cancel := func() {
		r.subsMu.Lock()
		if _, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(ch)
			streamClients.Dec()
		}
		r.subsMu.Unlock()
	}
	return id, ch, cancel
}

// Last returns the most recent update, if any record has arrived yet.
func (r *Relay) Last() (Update, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Update{}, false
	}
	return *r.last, true
}

func (r *Relay) Stats() Stats {
	r.subsMu.RLock()
	subscribers := len(r.subs)
	r.subsMu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	s := Stats{
		UpdatesReceived:  r.received,
		UpdatesDelivered: r.delivered,
		UpdatesCoalesced: r.coalesced,
		SubscriberDrops:  r.sendDrops,
		Subscribers:      subscribers,
	}
	if r.last != nil {
		t := r.last.ReceivedAt
		s.LastUpdatedAt = &t
	}
	return s
}

// onRecord is the channel callback: recompute fresh from whatever vector the
// store handed us, remember it, and deliver unless inside the throttle window.
func (r *Relay) onRecord(_ string, data []byte) {
	var rec channel.VectorRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Warn("invalid vector record", "error", err)
		return
	}

	result := r.Engine().Compute(recipe.ToEngineVector(rec.DisplayVector()))
	upd := Update{Record: rec, Recipe: result, ReceivedAt: time.Now()}
	updatesReceived.Inc()

	r.mu.Lock()
	r.received++
	r.last = &upd
	interval := r.cfg.MinInterval()
	if interval > 0 && time.Since(r.lastDeliver) < interval {
		if r.pending != nil {
			r.coalesced++
			updatesCoalesced.Inc()
		}
		r.pending = &upd
		r.mu.Unlock()
		return
	}
	r.lastDeliver = time.Now()
	r.pending = nil
	r.delivered++
	r.mu.Unlock()

	r.fanOut(upd)
}

// flushLoop delivers the newest coalesced update once the throttle window
// reopens.
func (r *Relay) flushLoop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.MinInterval())
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.pending == nil || time.Since(r.lastDeliver) < r.cfg.MinInterval() {
				r.mu.Unlock()
				continue
			}
			upd := *r.pending
			r.pending = nil
			r.lastDeliver = time.Now()
			r.delivered++
			r.mu.Unlock()

			r.fanOut(upd)
		}
	}
}

func (r *Relay) fanOut(upd Update) {
	r.subsMu.RLock()
	defer r.subsMu.RUnlock()
	for id, ch := range r.subs {
		select {
		case ch <- upd:
		default:
			r.mu.Lock()
			r.sendDrops++
			r.mu.Unlock()
			r.logger.Debug("subscriber buffer full, dropping update", "subscriber", id)
		}
	}
}

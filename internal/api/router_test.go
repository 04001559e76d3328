package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Yuki33825/x-music-bar/internal/channel"
	"github.com/Yuki33825/x-music-bar/internal/config"
	"github.com/Yuki33825/x-music-bar/internal/recipe"
	"github.com/Yuki33825/x-music-bar/internal/relay"
)

func setupTestRouter(t *testing.T) (http.Handler, *channel.MemoryClient, *relay.Relay) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Server:  config.ServerConfig{AdminToken: "test-token", RateLimitPerMinute: 1200},
		Channel: config.ChannelConfig{Key: channel.KeyVector},
		Relay:   config.RelayConfig{MinIntervalMs: 0, Buffer: 8},
	}

	engine, err := recipe.NewEngine(recipe.DefaultParams(), recipe.DefaultCatalog())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	ch := channel.NewMemoryClient()
	t.Cleanup(ch.Close)

	rel := relay.New(ch, engine, cfg, logger)
	if err := rel.Start(context.Background()); err != nil {
		t.Fatalf("relay start: %v", err)
	}
	t.Cleanup(rel.Stop)

	return NewRouter(rel, ch, cfg, logger), ch, rel
}

func TestWriteVector(t *testing.T) {
	router, _, rel := setupTestRouter(t)

	body := `{"sweetness":0,"acidity":0,"bitterness":0,"intensity":0,"texture":100}`
	req := httptest.NewRequest("POST", "/api/v1/vector", bytes.NewBufferString(body))
	req.Header.Set("X-Client-ID", "panel-1")
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp WriteVectorResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Record.Texture != 100 {
		t.Errorf("expected texture 100, got %f", resp.Record.Texture)
	}
	if resp.Record.WriterID != "panel-1" {
		t.Errorf("expected writer panel-1, got %s", resp.Record.WriterID)
	}
	if resp.Record.UpdatedAt == 0 {
		t.Error("expected a write timestamp")
	}
	if resp.Recipe.Volume != 150.0 {
		t.Errorf("expected volume 150.0, got %f", resp.Recipe.Volume)
	}

	// The write went through the channel, so the relay saw it too.
	last, ok := rel.Last()
	if !ok {
		t.Fatal("expected relay to have the update")
	}
	if last.Recipe.Volume != 150.0 {
		t.Errorf("expected relay volume 150.0, got %f", last.Recipe.Volume)
	}
}

func TestWriteVectorGeneratesWriterID(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	req := httptest.NewRequest("POST", "/api/v1/vector", bytes.NewBufferString(`{"sweetness":50}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp WriteVectorResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Record.WriterID == "" {
		t.Error("expected a generated writer id")
	}
}

func TestWriteVectorInvalidBody(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	req := httptest.NewRequest("POST", "/api/v1/vector", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetVector(t *testing.T) {
	router, ch, _ := setupTestRouter(t)

	t.Run("before first write", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/vector", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})

	t.Run("after write", func(t *testing.T) {
		rec := channel.NewVectorRecord(recipe.DisplayVector{Acidity: 70}, "panel-2")
		_ = ch.Write(context.Background(), channel.KeyVector, rec)

		req := httptest.NewRequest("GET", "/api/v1/vector", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var got channel.VectorRecord
		json.NewDecoder(w.Body).Decode(&got)
		if got.Acidity != 70 || got.WriterID != "panel-2" {
			t.Errorf("unexpected record: %+v", got)
		}
	})
}

func TestComputeRecipe(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/recipe?texture=100", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var result recipe.Result
	json.NewDecoder(w.Body).Decode(&result)
	if result.Volume != 150.0 {
		t.Errorf("expected volume 150.0, got %f", result.Volume)
	}
}

func TestComputeRecipeMissingParamsDefaultToZero(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/recipe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var result recipe.Result
	json.NewDecoder(w.Body).Decode(&result)
	if result.Volume != 60.0 {
		t.Errorf("expected volume 60.0, got %f", result.Volume)
	}
	if len(result.Pours) != 15 {
		t.Errorf("expected uniform 15 pours, got %d", len(result.Pours))
	}
}

func TestComputeRecipeInvalidQuery(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/recipe?sweetness=syrupy", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestExplainRecipe(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/recipe/explain?sweetness=100", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var b recipe.Breakdown
	json.NewDecoder(w.Body).Decode(&b)
	if len(b.Shares) != 15 {
		t.Errorf("expected 15 shares, got %d", len(b.Shares))
	}
	if b.Input.Sweetness != 1.0 {
		t.Errorf("expected engine-domain input 1.0, got %f", b.Input.Sweetness)
	}
}

func TestListIngredients(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/ingredients", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var catalog []recipe.Ingredient
	json.NewDecoder(w.Body).Decode(&catalog)
	if len(catalog) != 15 {
		t.Errorf("expected 15 ingredients, got %d", len(catalog))
	}
	if catalog[0].Name != "Simple Syrup" {
		t.Errorf("expected Simple Syrup first, got %s", catalog[0].Name)
	}
}

func TestStatsRequiresAdminToken(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestStatsWithToken(t *testing.T) {
	router, ch, _ := setupTestRouter(t)
	_ = ch.Write(context.Background(), channel.KeyVector, channel.VectorRecord{Sweetness: 10})

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var stats relay.Stats
	json.NewDecoder(w.Body).Decode(&stats)
	if stats.UpdatesReceived != 1 {
		t.Errorf("expected 1 received, got %d", stats.UpdatesReceived)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := NewMetricsRouter()
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestStreamDeliversUpdates(t *testing.T) {
	router, ch, _ := setupTestRouter(t)

	srv := httptest.NewServer(router)
	defer srv.Close()

	// Seed the shared record so the stream has something to replay.
	rec := channel.NewVectorRecord(recipe.DisplayVector{Texture: 100}, "panel-1")
	_ = ch.Write(context.Background(), channel.KeyVector, rec)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/api/v1/stream", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %s", ct)
	}

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	if !strings.HasPrefix(line, "data: ") {
		t.Fatalf("expected SSE data line, got %q", line)
	}

	var upd relay.Update
	if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &upd); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if upd.Recipe.Volume != 150.0 {
		t.Errorf("expected volume 150.0, got %f", upd.Recipe.Volume)
	}
	if upd.Record.WriterID != "panel-1" {
		t.Errorf("unexpected record: %+v", upd.Record)
	}
}

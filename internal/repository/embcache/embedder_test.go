package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/furnilabs/furnireco/internal/db"
	"github.com/furnilabs/furnireco/internal/domain"
)

type fakeKV struct {
	data    map[string][]byte
	lastTTL time.Duration
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := f.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.data[key] = value
	f.lastTTL = ttl
	return nil
}

type countingEmbedder struct {
	vec   []float32
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	c.calls++
	return domain.EmbeddingResult{Embedding: c.vec, TotalTokens: 7}, nil
}

func TestEmbed_MissThenHit(t *testing.T) {
	kv := newFakeKV()
	inner := &countingEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	cached := New(inner, kv, "test-model", time.Hour, nil, zap.NewNop())

	ctx := context.Background()

	first, err := cached.Embed(ctx, "oak table")
	if err != nil {
		t.Fatalf("first Embed: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls = %d, want 1", inner.calls)
	}
	if first.TotalTokens != 7 {
		t.Errorf("miss should report real token usage, got %d", first.TotalTokens)
	}
	if kv.lastTTL != time.Hour {
		t.Errorf("cache TTL = %v, want 1h", kv.lastTTL)
	}

	second, err := cached.Embed(ctx, "oak table")
	if err != nil {
		t.Fatalf("second Embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("cache hit must not call the inner embedder, calls = %d", inner.calls)
	}
	if len(second.Embedding) != 3 || second.Embedding[1] != 0.2 {
		t.Errorf("cached vector = %v", second.Embedding)
	}
	if second.TotalTokens != 0 {
		t.Errorf("hit should report zero tokens, got %d", second.TotalTokens)
	}
}

func TestEmbed_ModelIsPartOfKey(t *testing.T) {
	kv := newFakeKV()
	ctx := context.Background()

	a := New(&countingEmbedder{vec: []float32{1}}, kv, "model-a", time.Hour, nil, zap.NewNop())
	if _, err := a.Embed(ctx, "chair"); err != nil {
		t.Fatal(err)
	}

	innerB := &countingEmbedder{vec: []float32{2}}
	b := New(innerB, kv, "model-b", time.Hour, nil, zap.NewNop())
	if _, err := b.Embed(ctx, "chair"); err != nil {
		t.Fatal(err)
	}
	if innerB.calls != 1 {
		t.Error("different model must not share cache entries")
	}
}

type checkableEmbedder struct {
	countingEmbedder
	checkErr error
}

func (c *checkableEmbedder) HealthCheck(_ context.Context) error { return c.checkErr }

func TestHealthCheck_ForwardsToInner(t *testing.T) {
	inner := &checkableEmbedder{checkErr: errors.New("provider down")}
	cached := New(inner, newFakeKV(), "m", time.Hour, nil, zap.NewNop())

	if err := cached.HealthCheck(context.Background()); err == nil {
		t.Error("inner probe failure must surface through the decorator")
	}

	inner.checkErr = nil
	if err := cached.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}

func TestHealthCheck_InnerWithoutProbeIsHealthy(t *testing.T) {
	cached := New(&countingEmbedder{}, newFakeKV(), "m", time.Hour, nil, zap.NewNop())

	if err := cached.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}

func TestEmbed_CorruptEntryDegradesToMiss(t *testing.T) {
	kv := newFakeKV()
	inner := &countingEmbedder{vec: []float32{1, 2}}
	cached := New(inner, kv, "m", time.Hour, nil, zap.NewNop())
	ctx := context.Background()

	if _, err := cached.Embed(ctx, "lamp"); err != nil {
		t.Fatal(err)
	}
	for k := range kv.data {
		kv.data[k] = []byte{1, 2, 3} // not a multiple of 4
	}

	res, err := cached.Embed(ctx, "lamp")
	if err != nil {
		t.Fatalf("Embed over corrupt cache: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("corrupt entry should fall through to the inner embedder, calls = %d", inner.calls)
	}
	if len(res.Embedding) != 2 {
		t.Errorf("vector = %v", res.Embedding)
	}
}

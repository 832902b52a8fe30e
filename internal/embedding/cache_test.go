package embedding

import (
	"context"
	"testing"
)

func TestEmbeddingCache_GetSet(t *testing.T) {
	c := NewEmbeddingCache(2)
	if v, ok := c.Get("a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("a", []float32{1, 2, 3})
	v, ok := c.Get("a")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("b", []float32{4, 5})
	c.Set("c", []float32{6}) // evicts a
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to remain")
	}
	if c.Len() != 2 {
		t.Errorf("Len=%d", c.Len())
	}
}

func TestEmbeddingCache_GetRefreshesRecency(t *testing.T) {
	c := NewEmbeddingCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Get("a")
	c.Set("c", []float32{3}) // evicts b, not a
	if _, ok := c.Get("a"); !ok {
		t.Error("recently read entry should survive")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
}

// countingEmbedder records every text it is asked to embed.
type countingEmbedder struct {
	*MockEmbedder
	seen []string
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.seen = append(c.seen, text)
	return c.MockEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.seen = append(c.seen, texts...)
	return c.MockEmbedder.EmbedBatch(ctx, texts)
}

func TestCached_EmbedBatchOnlyMisses(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(16)}
	c := NewCached(inner, 10)
	ctx := context.Background()

	if _, err := c.Embed(ctx, "alpha"); err != nil {
		t.Fatal(err)
	}
	out, err := c.EmbedBatch(ctx, []string{"beta", "alpha", "gamma"})
	if err != nil {
		t.Fatal(err)
	}
	if len(inner.seen) != 3 || inner.seen[1] != "beta" || inner.seen[2] != "gamma" {
		t.Errorf("inner calls: %v", inner.seen)
	}
	want, _ := inner.MockEmbedder.Embed(ctx, "alpha")
	for i := range want {
		if out[1][i] != want[i] {
			t.Fatalf("cached vector out of order at %d", i)
		}
	}
	if _, err := c.EmbedBatch(ctx, []string{"gamma", "beta"}); err != nil {
		t.Fatal(err)
	}
	if len(inner.seen) != 3 {
		t.Errorf("fully cached batch should not call inner: %v", inner.seen)
	}
	if c.Dimensions() != 16 {
		t.Errorf("Dimensions=%d", c.Dimensions())
	}
}

package locator

import (
	"context"
	"testing"
)

type countingResolver struct {
	calls       int
	invalidated int
	desc        MediaDescriptor
	err         error
}

func (r *countingResolver) Resolve(_ context.Context, _ string) (MediaDescriptor, error) {
	r.calls++
	if r.err != nil {
		return MediaDescriptor{}, r.err
	}
	return r.desc, nil
}

func (r *countingResolver) Invalidate(string) {
	r.invalidated++
}

func TestCacheReusesUsableDescriptor(t *testing.T) {
	inner := &countingResolver{desc: MediaDescriptor{
		SourceID:  "abc",
		Endpoints: []StreamEndpoint{{Kind: KindMuxed, URL: "https://cdn.example/m"}},
	}}
	cache := NewCache(inner)

	for i := 0; i < 3; i++ {
		if _, err := cache.Resolve(context.Background(), "src"); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected one underlying resolution, got %d", inner.calls)
	}
}

func TestCacheInvalidateForcesFreshResolution(t *testing.T) {
	inner := &countingResolver{desc: MediaDescriptor{
		SourceID:  "abc",
		Endpoints: []StreamEndpoint{{Kind: KindMuxed, URL: "https://cdn.example/m"}},
	}}
	cache := NewCache(inner)

	if _, err := cache.Resolve(context.Background(), "src"); err != nil {
		t.Fatal(err)
	}
	cache.Invalidate("src")
	if _, err := cache.Resolve(context.Background(), "src"); err != nil {
		t.Fatal(err)
	}

	if inner.calls != 2 {
		t.Fatalf("expected re-resolution after invalidate, got %d calls", inner.calls)
	}
	if inner.invalidated != 1 {
		t.Fatalf("invalidate not forwarded to resolver: %d", inner.invalidated)
	}
}

func TestCacheSkipsUnusableCachedDescriptor(t *testing.T) {
	inner := &countingResolver{desc: MediaDescriptor{SourceID: "abc"}} // no endpoints
	cache := NewCache(inner)

	_, _ = cache.Resolve(context.Background(), "src")
	_, _ = cache.Resolve(context.Background(), "src")

	if inner.calls != 2 {
		t.Fatalf("unusable descriptor must not be served from cache: %d calls", inner.calls)
	}
}

package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/patchgarden/gardener/internal/statedoc"
)

type fakeSource struct {
	ready bool
	doc   statedoc.Document
}

func (f *fakeSource) Ready() bool { return f.ready }

func (f *fakeSource) Document() statedoc.Document { return statedoc.CloneDocument(f.doc) }

func (f *fakeSource) At(path string) (any, bool) {
	if !f.ready {
		return nil, false
	}
	return statedoc.Get(f.doc, statedoc.ParsePointer(path))
}

func TestSyncer_PushesStateAndInventory(t *testing.T) {
	var mu sync.Mutex
	paths := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths[r.URL.Path]++
		mu.Unlock()
	}))
	defer srv.Close()

	source := &fakeSource{
		ready: true,
		doc: statedoc.Document{
			"inventory": map[string]any{"items": []any{
				map[string]any{"id": "i-1"},
			}},
		},
	}
	syncer := NewSyncer(NewClient(srv.URL), source, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- syncer.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		ok := paths["/api/state"] >= 1 && paths["/api/inventory"] >= 1
		mu.Unlock()
		if ok {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if paths["/api/state"] == 0 {
		t.Error("state was never pushed")
	}
	if paths["/api/inventory"] == 0 {
		t.Error("inventory was never pushed")
	}
}

func TestSyncer_SkipsBeforeReady(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
	}))
	defer srv.Close()

	syncer := NewSyncer(NewClient(srv.URL), &fakeSource{ready: false}, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	syncer.Start(ctx)

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("expected no pushes before welcome, got %d", calls)
	}
}

// Package mirror holds the local authoritative copy of the remote game
// state. The document is seeded wholesale by a Welcome frame and then kept
// consistent by applying the PartialState patch stream in order. Loops read
// the mirror through deep-copied accessors; the only writers are the two
// ingest paths.
package mirror

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/patchgarden/gardener/internal/garden"
	"github.com/patchgarden/gardener/internal/statedoc"
)

// Document keys the derived caches recognize.
const (
	keyGarden      = "garden"
	keyTileObjects = "tileObjects"
	keyInventory   = "inventory"
	keyItems       = "items"
	keyPetSlots    = "petSlots"
	keyShops       = "shops"
)

// Mirror is safe for concurrent use. The original client ran on a single
// cooperative execution context and needed no locking; here every loop is
// its own goroutine, so reads and the ingest writers synchronize on one
// RWMutex.
type Mirror struct {
	mu      sync.RWMutex
	doc     statedoc.Document
	ready   bool
	skipped int

	tiles map[int]garden.Tile
	items []Item
	pets  []PetSlot
	shops map[string]ShopSnapshot

	updateCh chan struct{}

	listenerMu       sync.Mutex
	updateListeners  []func()
	restockListeners []func(kind string)
}

func New() *Mirror {
	return &Mirror{
		updateCh: make(chan struct{}),
	}
}

// IngestWelcome replaces the document wholesale and rebuilds every derived
// cache. The incoming document is deep-copied; the caller keeps ownership
// of its copy.
func (m *Mirror) IngestWelcome(doc statedoc.Document) {
	m.mu.Lock()
	m.doc = statedoc.CloneDocument(doc)
	m.ready = true
	m.rebuildGarden()
	m.rebuildInventory()
	m.rebuildPets()
	m.rebuildShops()
	m.bumpUpdate()
	m.mu.Unlock()

	m.notifyUpdate()
}

// IngestPartialState applies patches in order to the document and refreshes
// the derived caches the patches touched. Patches that do not match the
// document shape are skipped and logged, never fatal. Patches arriving
// before any Welcome are counted and dropped.
func (m *Mirror) IngestPartialState(patches []statedoc.Patch) (applied, skipped int) {
	m.mu.Lock()
	if !m.ready {
		m.skipped += len(patches)
		m.mu.Unlock()
		slog.Debug("dropping patches before welcome", "count", len(patches))
		return 0, len(patches)
	}

	prevShops := m.shops
	touched := map[string]bool{}
	for _, p := range patches {
		if err := statedoc.Apply(m.doc, p); err != nil {
			skipped++
			slog.Debug("skipping patch", "path", p.Path.String(), "op", p.Op.String(), "reason", err)
			continue
		}
		applied++
		if len(p.Path) > 0 {
			touched[p.Path[0]] = true
		}
	}

	if touched[keyGarden] {
		m.rebuildGarden()
	}
	if touched[keyInventory] {
		m.rebuildInventory()
	}
	if touched[keyPetSlots] {
		m.rebuildPets()
	}
	if touched[keyShops] {
		m.rebuildShops()
	}

	var restocked []string
	if touched[keyShops] {
		restocked = restockEdges(prevShops, m.shops)
	}

	m.bumpUpdate()
	m.mu.Unlock()

	m.notifyUpdate()
	for _, kind := range restocked {
		m.notifyRestock(kind)
	}
	return applied, skipped
}

// restockEdges returns the kinds whose countdown jumped upward — the
// restock edge. Monotonic decreases are the normal ticking countdown and
// do not fire.
func restockEdges(prev, next map[string]ShopSnapshot) []string {
	var kinds []string
	for kind, old := range prev {
		cur, ok := next[kind]
		if ok && cur.SecondsUntilRestock > old.SecondsUntilRestock {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// Ready reports whether a Welcome has been ingested.
func (m *Mirror) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

// SkippedBeforeWelcome reports how many patches arrived before the first
// Welcome and were dropped.
func (m *Mirror) SkippedBeforeWelcome() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.skipped
}

// Document returns a deep copy of the full document, or nil before Welcome.
func (m *Mirror) Document() statedoc.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		return nil
	}
	return statedoc.CloneDocument(m.doc)
}

// At returns a deep copy of the value at a pointer path.
func (m *Mirror) At(path string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		return nil, false
	}
	v, ok := statedoc.Get(m.doc, statedoc.ParsePointer(path))
	if !ok {
		return nil, false
	}
	return statedoc.Clone(v), true
}

// bumpUpdate closes the current update channel, waking every AwaitUpdate,
// and installs a fresh one. Callers hold the write lock.
func (m *Mirror) bumpUpdate() {
	close(m.updateCh)
	m.updateCh = make(chan struct{})
}

// AwaitUpdate blocks until the next ingest, the timeout, or ctx
// cancellation. Returns true only when an update arrived.
func (m *Mirror) AwaitUpdate(ctx context.Context, timeout time.Duration) bool {
	m.mu.RLock()
	ch := m.updateCh
	m.mu.RUnlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// OnUpdate registers a callback fired after every ingest.
func (m *Mirror) OnUpdate(fn func()) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.updateListeners = append(m.updateListeners, fn)
}

// OnRestock registers a callback fired when a shop's countdown resets.
func (m *Mirror) OnRestock(fn func(kind string)) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.restockListeners = append(m.restockListeners, fn)
}

func (m *Mirror) notifyUpdate() {
	m.listenerMu.Lock()
	listeners := make([]func(), len(m.updateListeners))
	copy(listeners, m.updateListeners)
	m.listenerMu.Unlock()

	for _, fn := range listeners {
		safeCall(func() { fn() })
	}
}

func (m *Mirror) notifyRestock(kind string) {
	m.listenerMu.Lock()
	listeners := make([]func(string), len(m.restockListeners))
	copy(listeners, m.restockListeners)
	m.listenerMu.Unlock()

	for _, fn := range listeners {
		fn := fn
		safeCall(func() { fn(kind) })
	}
}

// safeCall shields the notify fan-out from a panicking listener so the
// remaining listeners still run.
func safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("mirror listener panicked", "panic", r)
		}
	}()
	fn()
}

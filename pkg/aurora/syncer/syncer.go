// Package syncer owns the in-memory dashboard state and keeps it aligned
// with the local document store and the cloud KV. The model is local-first:
// construction loads local documents synchronously so the dashboard serves
// immediately, and cloud sync runs afterwards as a best-effort overlay. A
// reachable cloud copy overwrites local state unconditionally; there is no
// merge or conflict detection (single-admin, last write wins).
package syncer

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/qbvs/aurora-pro/pkg/aurora/cloud"
	"github.com/qbvs/aurora-pro/pkg/aurora/localstore"
	"github.com/qbvs/aurora-pro/pkg/aurora/logbuf"
	"github.com/qbvs/aurora-pro/pkg/aurora/models"
	"github.com/qbvs/aurora-pro/pkg/aurora/recommend"
)

// Domain names one of the three independently synced documents.
type Domain string

const (
	DomainCategories Domain = "categories"
	DomainSettings   Domain = "settings"
	DomainEngines    Domain = "engines"
)

// Phase tracks how far a domain has progressed through startup sync.
type Phase string

const (
	PhaseUninitialized    Phase = "uninitialized"
	PhaseLocalLoaded      Phase = "local_loaded"
	PhaseCloudChecked     Phase = "cloud_checked"
	PhaseCloudSynced      Phase = "cloud_synced"
	PhaseCloudUnavailable Phase = "cloud_unavailable"
)

// Status is the tri-state connectivity indicator shown in the admin UI.
type Status string

const (
	StatusChecking     Status = "checking"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Task is the handle for a fire-and-forget cloud write. Callers that care
// can wait on Done and inspect OK; most don't.
type Task struct {
	done chan struct{}
	ok   bool
}

// Done is closed when the cloud write has settled.
func (t *Task) Done() <-chan struct{} { return t.done }

// OK reports whether the write was accepted. Only meaningful after Done.
func (t *Task) OK() bool { return t.ok }

// Orchestrator is the save/load choke point for all three domains.
type Orchestrator struct {
	local *localstore.Store
	kv    cloud.KV
	diag  *logbuf.Buffer

	mu       sync.RWMutex
	cats     []models.Category
	settings json.RawMessage
	engines  []models.SearchEngine
	status   Status
	phases   map[Domain]Phase

	writes sync.WaitGroup
}

// New loads all three domains from the local store, falling back to static
// defaults, and returns an orchestrator ready to serve. No network I/O
// happens here; call ConnectCloud afterwards (normally in a goroutine).
func New(local *localstore.Store, kv cloud.KV, diag *logbuf.Buffer) *Orchestrator {
	if diag == nil {
		diag = logbuf.New(0)
	}
	o := &Orchestrator{
		local:  local,
		kv:     kv,
		diag:   diag,
		status: StatusChecking,
		phases: map[Domain]Phase{
			DomainCategories: PhaseUninitialized,
			DomainSettings:   PhaseUninitialized,
			DomainEngines:    PhaseUninitialized,
		},
	}

	if !local.Get(models.KeyCategories, &o.cats) {
		o.cats = models.DefaultCategories()
	}
	o.cats = recommend.Update(o.cats)
	// Settings stay raw JSON: the core passes the document through
	// without interpreting it, so unknown fields survive round-trips.
	if !local.Get(models.KeySettings, &o.settings) {
		o.settings, _ = json.Marshal(models.DefaultSettings())
	}
	if !local.Get(models.KeyEngines, &o.engines) {
		o.engines = models.DefaultEngines()
	}
	for d := range o.phases {
		o.phases[d] = PhaseLocalLoaded
	}
	return o
}

// ConnectCloud probes the cloud backend and, when reachable, fetches all
// three domains in parallel. Any domain with a cloud copy overwrites both
// memory and the local store; domains without one keep local data. When
// the probe fails the orchestrator stays on local data indefinitely.
func (o *Orchestrator) ConnectCloud(ctx context.Context) {
	if !o.kv.Verify(ctx) {
		o.diag.Warnf("sync: cloud unreachable, staying local-only")
		log.Println("cloud storage unreachable, running local-only")
		o.mu.Lock()
		o.status = StatusDisconnected
		for d := range o.phases {
			o.phases[d] = PhaseCloudUnavailable
		}
		o.mu.Unlock()
		return
	}

	o.mu.Lock()
	o.status = StatusConnected
	for d := range o.phases {
		o.phases[d] = PhaseCloudChecked
	}
	o.mu.Unlock()
	o.diag.Infof("sync: cloud connected")

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		raw, ok := o.kv.Get(ctx, models.KeyCategories)
		o.adoptCloud(DomainCategories, models.KeyCategories, raw, ok)
	}()
	go func() {
		defer wg.Done()
		raw, ok := o.kv.Get(ctx, models.KeySettings)
		o.adoptCloud(DomainSettings, models.KeySettings, raw, ok)
	}()
	go func() {
		defer wg.Done()
		raw, ok := o.kv.Get(ctx, models.KeyEngines)
		o.adoptCloud(DomainEngines, models.KeyEngines, raw, ok)
	}()
	wg.Wait()
}

// adoptCloud applies one domain's cloud copy: decode, overwrite memory,
// rewrite the local store. Decode failures read as "no cloud data".
func (o *Orchestrator) adoptCloud(domain Domain, key string, raw json.RawMessage, ok bool) {
	if !ok {
		o.setPhase(domain, PhaseCloudUnavailable)
		return
	}

	switch domain {
	case DomainCategories:
		var cats []models.Category
		if json.Unmarshal(raw, &cats) != nil {
			o.setPhase(domain, PhaseCloudUnavailable)
			return
		}
		// Persist the re-aggregated array so the local document matches
		// memory exactly, the same invariant the save path upholds.
		cats = recommend.Update(cats)
		o.mu.Lock()
		o.cats = cats
		o.mu.Unlock()
		if rebuilt, err := json.Marshal(cats); err == nil {
			raw = rebuilt
		}
	case DomainSettings:
		// Opaque document: adopt the cloud bytes as-is.
		if !json.Valid(raw) {
			o.setPhase(domain, PhaseCloudUnavailable)
			return
		}
		o.mu.Lock()
		o.settings = raw
		o.mu.Unlock()
	case DomainEngines:
		var engines []models.SearchEngine
		if json.Unmarshal(raw, &engines) != nil {
			o.setPhase(domain, PhaseCloudUnavailable)
			return
		}
		o.mu.Lock()
		o.engines = engines
		o.mu.Unlock()
	}

	if err := o.local.SetRaw(key, raw); err != nil {
		o.diag.Warnf("sync: local write of cloud %s failed: %v", domain, err)
	}
	o.setPhase(domain, PhaseCloudSynced)
	o.diag.Infof("sync: adopted cloud copy of %s", domain)
}

func (o *Orchestrator) setPhase(domain Domain, p Phase) {
	o.mu.Lock()
	o.phases[domain] = p
	o.mu.Unlock()
}

// SaveCategories is the choke point for every category mutation: it
// recomputes the derived recommendations, swaps in-memory state, persists
// locally, and launches a background cloud write. The mutation counts as
// done once the local write settles; a local failure degrades to unsaved
// (memory keeps the new state) and is returned for the caller to surface.
func (o *Orchestrator) SaveCategories(cats []models.Category) (*Task, error) {
	cats = recommend.Update(cats)
	o.mu.Lock()
	o.cats = cats
	o.mu.Unlock()

	err := o.local.Save(models.KeyCategories, cats)
	if err != nil {
		o.diag.Warnf("sync: local save of categories failed: %v", err)
	}
	return o.saveCloud(models.KeyCategories, cats), err
}

// SaveSettings persists the settings document. The document is opaque to
// the core: the bytes handed in are the bytes written locally and to the
// cloud, whatever fields they carry.
func (o *Orchestrator) SaveSettings(settings json.RawMessage) (*Task, error) {
	o.mu.Lock()
	o.settings = settings
	o.mu.Unlock()

	err := o.local.Save(models.KeySettings, settings)
	if err != nil {
		o.diag.Warnf("sync: local save of settings failed: %v", err)
	}
	return o.saveCloud(models.KeySettings, settings), err
}

// SaveEngines persists the search engine list.
func (o *Orchestrator) SaveEngines(engines []models.SearchEngine) (*Task, error) {
	o.mu.Lock()
	o.engines = engines
	o.mu.Unlock()

	err := o.local.Save(models.KeyEngines, engines)
	if err != nil {
		o.diag.Warnf("sync: local save of engines failed: %v", err)
	}
	return o.saveCloud(models.KeyEngines, engines), err
}

func (o *Orchestrator) saveCloud(key string, value any) *Task {
	t := &Task{done: make(chan struct{})}
	o.writes.Add(1)
	go func() {
		defer o.writes.Done()
		defer close(t.done)
		t.ok = o.kv.Set(context.Background(), key, value)
		if !t.ok {
			o.diag.Warnf("sync: cloud write of %q failed", key)
		}
	}()
	return t
}

// Wait blocks until all in-flight cloud writes have settled.
func (o *Orchestrator) Wait() {
	o.writes.Wait()
}

// Categories returns a deep copy of the current category array.
func (o *Orchestrator) Categories() []models.Category {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]models.Category, len(o.cats))
	for i, cat := range o.cats {
		links := make([]models.LinkItem, len(cat.Links))
		copy(links, cat.Links)
		cat.Links = links
		out[i] = cat
	}
	return out
}

// Settings returns a copy of the current settings document bytes.
func (o *Orchestrator) Settings() json.RawMessage {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(json.RawMessage, len(o.settings))
	copy(out, o.settings)
	return out
}

// Engines returns a copy of the current search engine list.
func (o *Orchestrator) Engines() []models.SearchEngine {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]models.SearchEngine, len(o.engines))
	copy(out, o.engines)
	return out
}

// Status returns the connectivity tri-state.
func (o *Orchestrator) Status() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

// Phases returns a snapshot of per-domain sync progress.
func (o *Orchestrator) Phases() map[Domain]Phase {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[Domain]Phase, len(o.phases))
	for d, p := range o.phases {
		out[d] = p
	}
	return out
}

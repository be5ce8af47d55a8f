// vi: sw=4 ts=4:

/*

	Mnemonic:	registry
	Abstract:	The active-flow registry: tracks currently admitted
				best-effort flows and their node paths. Descended from the
				reservation inventory's cache map keyed by pledge id, but
				keyed here by "src||dst" per the data model and carrying only
				what the displacement tie-break and the REST debug endpoint
				need -- the node path and the most recent transmit rate --
				rather than a full reservation pledge with queues and time
				windows.
	Date:		29 July 2026
*/

package managers

import (
	"sync"
	"time"

	"github.com/meshctl/controller/internal/gizmos"
)

// flowKey is the registry key for a best-effort flow between src and dst:
// the concatenation of their names, matching the data model's
// src_host_name||dst_host_name convention.
func flowKey(src, dst string) string {
	return src + dst
}

// Record is one active best-effort flow: the node path it currently
// occupies and its most recently sampled transmit rate.
type Record struct {
	Src, Dst string
	Path     []string
	Rate     float64
	fresh    gizmos.Freshness
}

// Registry is the active-flow registry. Zero value is not usable; build one
// with MkRegistry.
type Registry struct {
	mu    sync.RWMutex
	cache map[string]*Record
}

// MkRegistry builds an empty registry.
func MkRegistry() *Registry {
	return &Registry{cache: make(map[string]*Record, 256)}
}

// Insert adds or overwrites the record for src->dst, per the "insert/overwrite
// on admission" lifecycle rule.
func (r *Registry) Insert(src, dst string, path []string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[flowKey(src, dst)] = &Record{
		Src:   src,
		Dst:   dst,
		Path:  path,
		fresh: gizmos.MkFreshness(now),
	}
}

// Get returns the record for src->dst, and whether it was found.
func (r *Registry) Get(src, dst string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.cache[flowKey(src, dst)]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Remove deletes the record for src->dst, if any. Returns true if a record
// was present and removed.
func (r *Registry) Remove(src, dst string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := flowKey(src, dst)
	if _, ok := r.cache[k]; !ok {
		return false
	}
	delete(r.cache, k)
	return true
}

// All returns a snapshot of every active-flow record, for the GET debug
// endpoint and for the displacement tie-break scan.
func (r *Registry) All() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, 0, len(r.cache))
	for _, rec := range r.cache {
		out = append(out, *rec)
	}
	return out
}

// UsingEdge returns every active-flow record whose node path traverses the
// (u,v) edge, in either direction -- the candidate set for displacement.
func (r *Registry) UsingEdge(u, v string) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Record
	for _, rec := range r.cache {
		for i := 0; i+1 < len(rec.Path); i++ {
			if (rec.Path[i] == u && rec.Path[i+1] == v) || (rec.Path[i] == v && rec.Path[i+1] == u) {
				out = append(out, *rec)
				break
			}
		}
	}
	return out
}

// UpdateRate sets the most-recently sampled transmit rate for src->dst, if
// that flow is currently registered, and marks the sample fresh as of now.
// Reports whether a record was found to update.
func (r *Registry) UpdateRate(src, dst string, rate float64, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.cache[flowKey(src, dst)]
	if !ok {
		return false
	}
	rec.Rate = rate
	rec.fresh.Touch(now)
	return true
}

// MarkMissedTick records that a monitor tick passed without a fresh sample
// for src->dst, used to detect staleness for the BANDWIDTH tie-break.
func (r *Registry) MarkMissedTick(src, dst string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.cache[flowKey(src, dst)]; ok {
		rec.fresh.Miss()
	}
}

// Has reports whether src->dst is currently registered.
func (r *Registry) Has(src, dst string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cache[flowKey(src, dst)]
	return ok
}

// Len returns the number of active-flow records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

package rendergraph

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultStaleLifetime is the number of frames a pooled resource may sit
// unused before PurgeUnused destroys it.
const DefaultStaleLifetime = 10

// pooledEntry is a released resource and the frame it was released in.
type pooledEntry[R comparable] struct {
	resource  R
	frameUsed int
}

// frameAllocation is a resource checked out of the pool this frame.
type frameAllocation struct {
	hash uint64
	name string
}

// resourcePool recycles backing resources keyed by descriptor hash.
// Within a bucket, the most recently released resource is reused first.
//
// resourcePool is not safe for concurrent use; the registry drives it from
// the rendering goroutine.
type resourcePool[R comparable] struct {
	kind          string
	buckets       map[uint64][]pooledEntry[R]
	allocated     map[R]frameAllocation
	destroy       func(R)
	staleLifetime int
}

func newResourcePool[R comparable](kind string, staleLifetime int, destroy func(R)) *resourcePool[R] {
	if staleLifetime <= 0 {
		staleLifetime = DefaultStaleLifetime
	}
	return &resourcePool[R]{
		kind:          kind,
		buckets:       make(map[uint64][]pooledEntry[R]),
		allocated:     make(map[R]frameAllocation),
		destroy:       destroy,
		staleLifetime: staleLifetime,
	}
}

// tryGet pops a resource matching hash.
func (p *resourcePool[R]) tryGet(hash uint64) (R, bool) {
	stack := p.buckets[hash]
	if len(stack) == 0 {
		var zero R
		return zero, false
	}
	e := stack[len(stack)-1]
	if len(stack) == 1 {
		delete(p.buckets, hash)
	} else {
		p.buckets[hash] = stack[:len(stack)-1]
	}
	return e.resource, true
}

// release returns res to the pool stamped with frameIndex.
func (p *resourcePool[R]) release(hash uint64, res R, frameIndex int) {
	p.buckets[hash] = append(p.buckets[hash], pooledEntry[R]{resource: res, frameUsed: frameIndex})
}

func (p *resourcePool[R]) registerAllocation(res R, hash uint64, name string) {
	p.allocated[res] = frameAllocation{hash: hash, name: name}
}

func (p *resourcePool[R]) unregisterAllocation(res R) {
	delete(p.allocated, res)
}

// checkFrameAllocations returns every resource still checked out to the
// pool. Outside of an exception unwind the leak is reported as an error.
func (p *resourcePool[R]) checkFrameAllocations(onException bool, frameIndex int) error {
	if len(p.allocated) == 0 {
		return nil
	}

	names := make([]string, 0, len(p.allocated))
	for res, a := range p.allocated {
		names = append(names, a.name)
		p.release(a.hash, res, frameIndex)
	}
	clear(p.allocated)
	sort.Strings(names)

	if onException {
		slogger().Debug("rendergraph: reclaimed resources during unwind",
			"kind", p.kind, "count", len(names))
		return nil
	}
	return fmt.Errorf("%w: %d %s(s) not released: %s",
		ErrResourceLeak, len(names), p.kind, strings.Join(names, ", "))
}

// purge destroys entries whose last use is older than the stale lifetime.
// It returns the number of destroyed resources.
func (p *resourcePool[R]) purge(currentFrame int) int {
	purged := 0
	for hash, stack := range p.buckets {
		kept := stack[:0]
		for _, e := range stack {
			if e.frameUsed+p.staleLifetime < currentFrame {
				p.destroy(e.resource)
				purged++
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(p.buckets, hash)
		} else {
			p.buckets[hash] = kept
		}
	}
	return purged
}

// cleanup destroys every pooled and checked-out resource.
func (p *resourcePool[R]) cleanup() {
	for hash, stack := range p.buckets {
		for _, e := range stack {
			p.destroy(e.resource)
		}
		delete(p.buckets, hash)
	}
	for res := range p.allocated {
		p.destroy(res)
	}
	clear(p.allocated)
}

// len returns the number of idle pooled resources.
func (p *resourcePool[R]) len() int {
	n := 0
	for _, stack := range p.buckets {
		n += len(stack)
	}
	return n
}

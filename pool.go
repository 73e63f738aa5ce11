package numarena

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/cpu"
)

// Factory builds the region for one pool slot.
type Factory[T Numeric] func(slot int) (Region[T], error)

// GrowableFactory builds growable Arenas of the given initial capacity.
func GrowableFactory[T Numeric](capacity int) Factory[T] {
	return func(int) (Region[T], error) {
		a, err := NewArena[T](capacity, true)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
}

// FixedFactory builds non-extendable Arenas.
func FixedFactory[T Numeric](capacity int) Factory[T] {
	return func(int) (Region[T], error) {
		a, err := NewArena[T](capacity, false)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
}

// StaticFactory builds StaticArenas. The pool frees them on Close.
func StaticFactory[T Numeric](capacity int) Factory[T] {
	return func(int) (Region[T], error) {
		s, err := NewStaticArena[T](capacity)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

type slot[T Numeric] struct {
	region Region[T]
	_      cpu.CacheLinePad
}

// Pool lends a fixed set of private regions to concurrent tasks. A task
// holds at most one slot; a slot is held by at most one task. Acquire blocks
// while every slot is lent out, and waiters are woken in no particular
// order.
//
// The regions themselves are not locked: once a task has its slot, it alone
// may use it until Release.
type Pool[T Numeric] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	slots  []slot[T]
	free   *queue.Queue // slot indices
	owners map[TaskID]int
	closed bool

	log     *zap.Logger
	metrics *poolMetrics
	opts    poolOptions
}

// NewPool builds a pool whose slots are created by factory.
func NewPool[T Numeric](factory Factory[T], opts ...PoolOption) (*Pool[T], error) {
	if factory == nil {
		return nil, errors.Wrap(ErrConfig, "nil slot factory")
	}
	o, err := newPoolOptions(opts)
	if err != nil {
		return nil, err
	}

	p := &Pool[T]{
		slots:   make([]slot[T], 0, o.slots),
		free:    queue.New(),
		owners:  make(map[TaskID]int, o.slots),
		log:     o.logger,
		metrics: newPoolMetrics(o.name),
		opts:    o,
	}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < o.slots; i++ {
		r, err := factory(i)
		if err == nil && r == nil {
			err = errors.Wrapf(ErrConfig, "factory returned no region for slot %d", i)
		}
		if err != nil {
			for _, s := range p.slots {
				err = multierr.Append(err, destroy(s.region))
			}
			return nil, errors.Wrapf(err, "numarena: build slot %d", i)
		}
		p.slots = append(p.slots, slot[T]{region: r})
		p.free.Add(i)
	}

	if o.registerer != nil {
		if err := p.metrics.register(o.registerer); err != nil {
			for _, s := range p.slots {
				err = multierr.Append(err, destroy(s.region))
			}
			return nil, err
		}
	}
	p.metrics.slots.Set(float64(len(p.slots)))
	return p, nil
}

// Acquire returns the calling task's region, lending it a free slot first
// if it holds none. It blocks while no slot is free. Acquiring twice with
// the same task returns the same region.
func (p *Pool[T]) Acquire(task TaskID) (Region[T], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i, ok := p.owners[task]; ok {
		return p.slots[i].region, nil
	}
	if p.free.Length() == 0 && !p.closed {
		p.metrics.contended.Inc()
		p.log.Debug("waiting for free slot", zap.Stringer("task", task), zap.Int("slots", len(p.slots)))
	}
	for p.free.Length() == 0 && !p.closed {
		p.cond.Wait()
	}
	if p.closed {
		return nil, ErrClosed
	}
	return p.assignLocked(task), nil
}

// TryAcquire is Acquire without blocking. It reports false if the task holds
// no slot and none is free, or if the pool is closed.
func (p *Pool[T]) TryAcquire(task TaskID) (Region[T], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, false
	}
	if i, ok := p.owners[task]; ok {
		return p.slots[i].region, true
	}
	if p.free.Length() == 0 {
		return nil, false
	}
	return p.assignLocked(task), true
}

func (p *Pool[T]) assignLocked(task TaskID) Region[T] {
	i := p.free.Remove().(int)
	p.owners[task] = i
	p.metrics.acquires.Inc()
	p.metrics.inUse.Inc()
	return p.slots[i].region
}

// Release returns the task's slot to the pool. The slot's region must be
// empty: outstanding views or raw-view mode yield ErrUsage and the task
// keeps its slot.
func (p *Pool[T]) Release(task TaskID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i, ok := p.owners[task]
	if !ok {
		return errors.Wrapf(ErrUsage, "task %s holds no slot", task)
	}
	if used := p.slots[i].region.UsedCount(); used != 0 {
		return errors.Wrapf(ErrUsage, "release of slot %d with %d elements outstanding", i, used)
	}
	delete(p.owners, task)
	p.free.Add(i)
	p.metrics.releases.Inc()
	p.metrics.inUse.Dec()
	p.cond.Signal()
	return nil
}

// Allocate allocates from the task's region.
func (p *Pool[T]) Allocate(task TaskID, dims ...int) (View[T], error) {
	r, err := p.Acquire(task)
	if err != nil {
		return View[T]{}, err
	}
	return r.Allocate(dims...)
}

// Drop drops views from the task's region.
func (p *Pool[T]) Drop(task TaskID, views ...View[T]) error {
	r, err := p.Acquire(task)
	if err != nil {
		return err
	}
	return r.Drop(views...)
}

// ReshapeView takes a raw view from the task's region.
func (p *Pool[T]) ReshapeView(task TaskID, offset int, dims ...int) (View[T], error) {
	r, err := p.Acquire(task)
	if err != nil {
		return View[T]{}, err
	}
	return r.ReshapeView(offset, dims...)
}

// Reset empties the task's region and releases its slot.
func (p *Pool[T]) Reset(task TaskID) error {
	r, err := p.Acquire(task)
	if err != nil {
		return err
	}
	r.Reset()
	return p.Release(task)
}

// Repair resets every region and returns every slot to the free-list,
// forgetting all task associations. It recovers slots abandoned by tasks
// that never released them. It must not run while any task is still using
// its slot.
func (p *Pool[T]) Repair() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	if len(p.owners) > 0 {
		abandoned := make([]string, 0, len(p.owners))
		for task := range p.owners {
			abandoned = append(abandoned, task.String())
		}
		p.log.Warn("repairing pool with slots still assigned", zap.Strings("tasks", abandoned))
	}
	p.resetLocked()
	p.metrics.repairs.Inc()
	p.cond.Broadcast()
}

func (p *Pool[T]) resetLocked() {
	p.free = queue.New()
	for i := range p.slots {
		p.slots[i].region.Reset()
		p.free.Add(i)
	}
	clear(p.owners)
	p.metrics.inUse.Set(0)
}

// Close destroys every region and wakes blocked acquirers with ErrClosed.
// Views from the pool are invalid afterwards. Close is idempotent.
func (p *Pool[T]) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.resetLocked()
	p.cond.Broadcast()

	var err error
	for _, s := range p.slots {
		err = multierr.Append(err, destroy(s.region))
	}
	if p.opts.registerer != nil {
		p.metrics.unregister(p.opts.registerer)
	}
	p.log.Info("pool closed", zap.Int("slots", len(p.slots)))
	return err
}

// Lease returns an Allocator over the task's slot.
func (p *Pool[T]) Lease(task TaskID) *Lease[T] {
	return &Lease[T]{pool: p, task: task}
}

// SlotOf returns the index of the slot held by task.
func (p *Pool[T]) SlotOf(task TaskID) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i, ok := p.owners[task]
	return i, ok
}

// Available returns the number of free slots.
func (p *Pool[T]) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.free.Length()
}

// Slots returns the number of slots.
func (p *Pool[T]) Slots() int { return len(p.slots) }

// destroy frees a StaticArena or releases an Arena. Other regions are left
// alone.
func destroy[T Numeric](r Region[T]) error {
	switch x := r.(type) {
	case interface{ Free() error }:
		return x.Free()
	case interface{ Release() }:
		x.Release()
	}
	return nil
}

// Lease is the Allocator one task sees through a pool. Reset on a Lease
// empties the region and gives the slot back.
type Lease[T Numeric] struct {
	pool *Pool[T]
	task TaskID
}

// Task returns the lease's task.
func (l *Lease[T]) Task() TaskID { return l.task }

// Allocate allocates from the task's slot, acquiring one if needed.
func (l *Lease[T]) Allocate(dims ...int) (View[T], error) { return l.pool.Allocate(l.task, dims...) }

// Drop drops views from the task's slot.
func (l *Lease[T]) Drop(views ...View[T]) error { return l.pool.Drop(l.task, views...) }

// Reset empties the slot and releases it. On a closed pool it does nothing
// and logs the refusal.
func (l *Lease[T]) Reset() {
	if err := l.pool.Reset(l.task); err != nil {
		l.pool.log.Warn("lease reset failed", zap.Stringer("task", l.task), zap.Error(err))
	}
}

// Release gives the slot back; see Pool.Release.
func (l *Lease[T]) Release() error { return l.pool.Release(l.task) }

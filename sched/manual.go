package sched

import (
	"container/heap"
	"sync"
	"time"
)

// Manual is a virtual-time Scheduler. Callbacks only run inside Advance and Flush,
// ordered by due time and then by scheduling order. Post and AfterFunc may be
// called from any goroutine.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	queue taskQueue
}

// NewManual creates a Manual scheduler starting at the Unix epoch.
func NewManual() *Manual {
	return &Manual{now: time.Unix(0, 0)}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Elapsed returns the virtual time passed since creation.
func (m *Manual) Elapsed() time.Duration {
	return m.Now().Sub(time.Unix(0, 0))
}

// AfterFunc schedules fn at Now()+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &task{owner: m, due: m.now.Add(d), seq: m.seq, fn: fn}
	heap.Push(&m.queue, t)
	return t
}

// Post schedules fn at the current virtual time.
func (m *Manual) Post(fn func()) {
	m.AfterFunc(0, fn)
}

// Advance moves virtual time forward by d, running every callback that falls due.
// Callbacks scheduled while advancing run too if they are due before the target.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		next := m.popDue(target)
		if next == nil {
			break
		}
		next.fn()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// Flush runs everything due at the current virtual time.
func (m *Manual) Flush() {
	m.Advance(0)
}

// Pending returns the number of callbacks still scheduled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.queue {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (m *Manual) popDue(target time.Time) *task {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.queue.Len() > 0 {
		next := m.queue[0]
		if next.due.After(target) {
			return nil
		}
		heap.Pop(&m.queue)
		if next.cancelled {
			continue
		}
		m.now = next.due
		next.done = true
		return next
	}
	return nil
}

type task struct {
	owner     *Manual
	due       time.Time
	seq       uint64
	fn        func()
	cancelled bool
	done      bool
	index     int
}

func (t *task) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()

	if t.cancelled || t.done {
		return false
	}
	t.cancelled = true
	return true
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

// FlushUntil keeps flushing until cond holds or the real-time timeout passes.
// It is meant for work posted from other goroutines.
func (m *Manual) FlushUntil(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		m.Flush()
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}

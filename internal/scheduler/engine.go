// Package scheduler maintains the process-wide registry of pending
// one-shot reminder timers, keyed by task id. A single loop goroutine
// waits on the earliest fire time and emits due events on a buffered
// channel; scheduling the same task id again atomically replaces the
// pending timer, and Cancel revokes it.
package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

var (
	ErrInvalidFireTime = errors.New("scheduler: invalid fire time")
	ErrEngineStopped   = errors.New("scheduler: engine stopped")
)

// Event is a fired reminder, handed to the delivery path.
type Event struct {
	TaskID int64
	Title  string
	FireAt time.Time
}

type queueItem struct {
	event Event
	gen   uint64
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].event.FireAt.Before(pq[j].event.FireAt)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

type pending struct {
	gen    uint64
	fireAt time.Time
}

type Engine struct {
	mu      sync.Mutex
	queue   priorityQueue
	active  map[int64]pending
	nextGen uint64
	out     chan Event
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64

	logger     *log.Logger
	resolution time.Duration
	degraded   bool
}

type Option func(*Engine)

func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithCoarseResolution degrades the engine to approximate timing: waits
// are rounded up to the given granularity. Used when precise timers are
// not wanted or not available; the degradation is reported once.
func WithCoarseResolution(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.resolution = d
		}
	}
}

func NewEngine(bufferSize int, opts ...Option) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	e := &Engine{
		queue:  make(priorityQueue, 0),
		active: make(map[int64]pending),
		out:    make(chan Event, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) C() <-chan Event {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	if e.resolution > 0 && !e.degraded {
		e.degraded = true
		e.logger.Warn("precise timers unavailable, reminders degrade to coarse timing", "resolution", e.resolution)
	}
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Schedule installs a one-shot timer firing at fireAt. A past or
// present fireAt is a no-op. A timer already pending for the same task
// id is replaced: the stale registration can never fire.
func (e *Engine) Schedule(taskID int64, title string, fireAt time.Time) error {
	if fireAt.IsZero() {
		return ErrInvalidFireTime
	}
	if !fireAt.After(time.Now()) {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}

	e.nextGen++
	gen := e.nextGen
	e.active[taskID] = pending{gen: gen, fireAt: fireAt}
	heap.Push(&e.queue, queueItem{
		event: Event{TaskID: taskID, Title: title, FireAt: fireAt},
		gen:   gen,
	})
	e.signalWakeup()
	return nil
}

// Cancel revokes the pending timer for taskID. Safe to call when no
// timer exists or the timer has already fired.
func (e *Engine) Cancel(taskID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.active, taskID)
}

// PendingAt reports the fire time of the live timer for taskID, if any.
func (e *Engine) PendingAt(taskID int64) (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.active[taskID]
	if !ok {
		return time.Time{}, false
	}
	return p.fireAt, true
}

// PendingCount is the number of live timers.
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.FireAt)
		if wait < 0 {
			wait = 0
		}
		if e.resolution > 0 {
			wait = roundUp(wait, e.resolution)
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now())
			for _, ev := range due {
				select {
				case e.out <- ev:
				default:
					atomic.AddUint64(&e.dropped, 1)
					e.logger.Warn("reminder event dropped, consumer too slow", "task_id", ev.TaskID)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return Event{}, false
	}
	return e.queue[0].event, true
}

// popDue removes due queue items and returns the events that are still
// live. A queue item whose generation no longer matches the registry
// was cancelled or replaced; it is discarded without firing. Live
// events are unregistered here, under the lock, so a Cancel arriving
// after popDue returns cannot suppress the dispatch.
func (e *Engine) popDue(now time.Time) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Event, 0)
	for len(e.queue) > 0 {
		next := e.queue[0]
		if next.event.FireAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		p, ok := e.active[item.event.TaskID]
		if !ok || p.gen != item.gen {
			continue
		}
		delete(e.active, item.event.TaskID)
		out = append(out, item.event)
	}
	return out
}

func roundUp(d, granularity time.Duration) time.Duration {
	if granularity <= 0 || d%granularity == 0 {
		return d
	}
	return d + granularity - d%granularity
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

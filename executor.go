package comps

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	"github.com/df-mc/dragonfly/server/world"
)

// Executor runs work on the goroutine that owns the containers it touches.
// Submit returns false if the task was not accepted.
type Executor interface {
	Submit(task func()) bool
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(task func()) bool

// Submit calls f(task).
func (f ExecutorFunc) Submit(task func()) bool {
	return f(task)
}

// LogicLoop is an Executor backed by a single goroutine draining a buffered
// queue. A panicking task is logged and does not stop the loop.
type LogicLoop struct {
	tasks chan func()
	log   *slog.Logger

	running atomic.Bool
	stopped atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewLogicLoop creates a stopped logic loop with room for size pending tasks.
func NewLogicLoop(size int, log *slog.Logger) *LogicLoop {
	if size < 1 {
		size = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &LogicLoop{
		tasks:  make(chan func(), size),
		log:    log,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the loop goroutine. Calling Start more than once is a no-op.
func (l *LogicLoop) Start() {
	if l.stopped.Load() || l.running.Swap(true) {
		return
	}
	go l.run()
}

// Stop shuts the loop down and waits for the running task to finish.
// Tasks still queued are discarded.
func (l *LogicLoop) Stop() {
	if l.stopped.Swap(true) {
		return
	}
	close(l.stopCh)
	if l.running.Load() {
		<-l.doneCh
	}
}

// Submit queues task, blocking while the queue is full.
// Returns false once the loop was stopped.
func (l *LogicLoop) Submit(task func()) bool {
	if task == nil || l.stopped.Load() {
		return false
	}
	select {
	case l.tasks <- task:
		return true
	case <-l.stopCh:
		return false
	}
}

// Len returns the number of queued tasks.
func (l *LogicLoop) Len() int {
	return len(l.tasks)
}

func (l *LogicLoop) run() {
	defer close(l.doneCh)
	for {
		select {
		case <-l.stopCh:
			return
		case task := <-l.tasks:
			l.exec(task)
		}
	}
}

func (l *LogicLoop) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("comps: panic in logic loop task",
				"error", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()
	task()
}

// WorldExecutor runs tasks inside transactions of a Dragonfly world, which
// serializes them with the world's own tick.
type WorldExecutor struct {
	w   *world.World
	log *slog.Logger
}

// NewWorldExecutor creates an executor for w.
func NewWorldExecutor(w *world.World, log *slog.Logger) *WorldExecutor {
	if log == nil {
		log = slog.Default()
	}
	return &WorldExecutor{w: w, log: log}
}

// Submit schedules task in a world transaction without waiting for it.
func (e *WorldExecutor) Submit(task func()) bool {
	if task == nil {
		return false
	}
	return e.SubmitTx(func(*world.Tx) { task() })
}

// SubmitTx schedules task in a world transaction, passing the transaction.
func (e *WorldExecutor) SubmitTx(task func(tx *world.Tx)) bool {
	if task == nil || e.w == nil {
		return false
	}
	e.w.Exec(func(tx *world.Tx) {
		defer func() {
			if r := recover(); r != nil {
				e.log.Error("comps: panic in world task",
					"error", fmt.Sprint(r),
					"stack", string(debug.Stack()))
			}
		}()
		task(tx)
	})
	return true
}

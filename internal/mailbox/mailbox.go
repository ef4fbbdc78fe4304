package mailbox

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Task is a unit of work executed by the mailbox.
type Task func(ctx context.Context)

// Mailbox is an unbounded FIFO queue of tasks executed one at a time by a single goroutine.
type Mailbox struct {
	mu     sync.Mutex
	queue  []Task
	notify chan struct{}
}

// New creates new mailbox.
func New() *Mailbox {
	return &Mailbox{
		notify: make(chan struct{}, 1),
	}
}

// Push enqueues a task. It never blocks.
func (m *Mailbox) Push(task Task) {
	m.mu.Lock()
	m.queue = append(m.queue, task)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Reset drops all the queued tasks.
func (m *Mailbox) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queue = nil
}

// Run executes queued tasks in order until ctx is canceled.
func (m *Mailbox) Run(ctx context.Context) error {
	for {
		for {
			task, ok := m.pop()
			if !ok {
				break
			}
			task(ctx)

			if ctx.Err() != nil {
				return errors.WithStack(ctx.Err())
			}
		}

		select {
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		case <-m.notify:
		}
	}
}

func (m *Mailbox) pop() (Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return nil, false
	}

	task := m.queue[0]
	m.queue[0] = nil
	m.queue = m.queue[1:]
	return task, true
}

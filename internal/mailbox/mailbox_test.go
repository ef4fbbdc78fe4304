package mailbox

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/parallel"
	"github.com/outofforest/qa"
)

func TestTasksRunInOrder(t *testing.T) {
	requireT := require.New(t)

	ctx := qa.NewContext(t)
	group := qa.NewGroup(ctx, t)

	defer func() {
		group.Exit(nil)
		requireT.NoError(group.Wait())
	}()

	m := New()
	doneCh := make(chan []int, 1)
	var result []int
	for i := range 100 {
		m.Push(func(ctx context.Context) {
			result = append(result, i)
			if i == 99 {
				doneCh <- result
			}
		})
	}

	group.Spawn("mailbox", parallel.Fail, m.Run)

	select {
	case <-time.After(5 * time.Second):
		requireT.Fail("timeout")
	case result := <-doneCh:
		requireT.Len(result, 100)
		for i, v := range result {
			requireT.Equal(i, v)
		}
	}
}

func TestConcurrentPush(t *testing.T) {
	requireT := require.New(t)

	ctx := qa.NewContext(t)
	group := qa.NewGroup(ctx, t)

	defer func() {
		group.Exit(nil)
		requireT.NoError(group.Wait())
	}()

	m := New()
	group.Spawn("mailbox", parallel.Fail, m.Run)

	const producers = 10
	const tasks = 100

	var count int
	doneCh := make(chan struct{})

	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range tasks {
				m.Push(func(ctx context.Context) {
					// Tasks never run concurrently so count needs no lock.
					count++
					if count == producers*tasks {
						close(doneCh)
					}
				})
			}
		}()
	}
	wg.Wait()

	select {
	case <-time.After(5 * time.Second):
		requireT.Fail("timeout")
	case <-doneCh:
	}
}

func TestReset(t *testing.T) {
	requireT := require.New(t)

	m := New()
	m.Push(func(ctx context.Context) {
		requireT.Fail("dropped task executed")
	})
	m.Reset()

	_, ok := m.pop()
	requireT.False(ok)
}

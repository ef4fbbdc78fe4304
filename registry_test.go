package huddle

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddRemove(t *testing.T) {
	requireT := require.New(t)

	r := newRegistry[func() int]()
	id1 := r.Add(func() int { return 1 })
	id2 := r.Add(func() int { return 2 })
	requireT.NotEqual(id1, id2)
	requireT.Equal(2, r.Len())

	var sum int
	r.Each(func(h func() int) {
		sum += h()
	})
	requireT.Equal(3, sum)

	requireT.True(r.Remove(id1))
	requireT.False(r.Remove(id1))
	requireT.False(r.Remove(uuid.New()))
	requireT.Equal(1, r.Len())

	sum = 0
	r.Each(func(h func() int) {
		sum += h()
	})
	requireT.Equal(2, sum)
}

func TestRegistryRemoveDuringPass(t *testing.T) {
	requireT := require.New(t)

	r := newRegistry[func()]()

	calls := map[string]int{}
	var idA, idB uuid.UUID
	idA = r.Add(func() {
		calls["a"]++
		r.Remove(idB)
	})
	idB = r.Add(func() {
		calls["b"]++
		r.Remove(idA)
	})
	r.Add(func() {
		calls["c"]++
	})

	r.Each(func(h func()) { h() })

	// Whichever of a and b runs first removes the other one.
	requireT.Equal(1, calls["a"]+calls["b"])
	requireT.Equal(1, calls["c"])
	requireT.Equal(2, r.Len())

	r.Each(func(h func()) { h() })
	requireT.Equal(2, calls["a"]+calls["b"])
	requireT.Equal(2, calls["c"])
}

func TestRegistryAddDuringPass(t *testing.T) {
	requireT := require.New(t)

	r := newRegistry[func()]()

	var added int
	r.Add(func() {
		added++
		r.Add(func() {})
	})

	r.Each(func(h func()) { h() })
	requireT.Equal(1, added)
	requireT.Equal(2, r.Len())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := newRegistry[func()]()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 200 {
				id := r.Add(func() {})
				r.Remove(id)
			}
		}()
		go func() {
			defer wg.Done()
			for range 200 {
				r.Each(func(h func()) { h() })
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 0, r.Len())
}

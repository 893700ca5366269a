package cache

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type value struct{ n int }

func TestGetPut(t *testing.T) {
	c := New[value](false)
	_, ok := c.Get("k")
	require.False(t, ok)

	v := &value{n: 1}
	c.Put("k", v)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Same(t, v, got)

	w := &value{n: 2}
	c.Put("k", w)
	got, _ = c.Get("k")
	assert.Same(t, w, got)
	assert.Equal(t, 1, c.Len())
	runtime.KeepAlive(v)
}

func TestPutNilIgnored(t *testing.T) {
	c := New[value](false)
	c.Put("k", nil)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestEntriesDoNotKeepValuesAlive(t *testing.T) {
	c := New[value](false)
	func() {
		c.Put("k", &value{n: 1})
	}()
	require.Eventually(t, func() bool {
		runtime.GC()
		_, ok := c.Get("k")
		return !ok && c.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestLiveValueSurvivesGC(t *testing.T) {
	c := New[value](false)
	v := &value{n: 1}
	c.Put("k", v)
	runtime.GC()
	runtime.GC()
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Same(t, v, got)
	runtime.KeepAlive(v)
}

func TestDoCachesSuccessOnly(t *testing.T) {
	for _, coalesce := range []bool{false, true} {
		c := New[value](coalesce)
		boom := errors.New("boom")

		_, _, err := c.Do("k", func() (*value, error) { return nil, boom })
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 0, c.Len())

		v := &value{n: 7}
		got, hit, err := c.Do("k", func() (*value, error) { return v, nil })
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Same(t, v, got)

		got, hit, err = c.Do("k", func() (*value, error) {
			t.Fatal("build called on hit")
			return nil, nil
		})
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Same(t, v, got)
		runtime.KeepAlive(v)
	}
}

func TestDoCoalescesConcurrentBuilds(t *testing.T) {
	c := New[value](true)
	release := make(chan struct{})
	var builds atomic.Int32

	const callers = 8
	results := make([]*value, callers)
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	for i := range callers {
		go func() {
			defer done.Done()
			started.Done()
			v, _, err := c.Do("k", func() (*value, error) {
				builds.Add(1)
				<-release
				return &value{n: 1}, nil
			})
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()

	assert.LessOrEqual(t, builds.Load(), int32(callers))
	for _, r := range results {
		require.NotNil(t, r)
	}
	if builds.Load() == 1 {
		for _, r := range results[1:] {
			assert.Same(t, results[0], r)
		}
	}
}

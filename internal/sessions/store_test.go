package sessions

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_NewAndGet(t *testing.T) {
	st := NewStore(time.Minute)
	defer st.Close()

	s := st.New("sess-1", "user-1", 42, "Data Wrangling")
	require.NotNil(t, s)
	assert.Equal(t, "sess-1", s.ID)
	assert.NotNil(t, s.Engine)
	assert.NotNil(t, s.Asked)

	got := st.Get("sess-1")
	require.NotNil(t, got)
	assert.Same(t, s, got)

	assert.Nil(t, st.Get("unknown"))
	assert.Equal(t, 1, st.Len())
}

func TestStore_Delete(t *testing.T) {
	st := NewStore(time.Minute)
	defer st.Close()

	st.New("sess-1", "user-1", 1, "M")
	st.Delete("sess-1")

	assert.Nil(t, st.Get("sess-1"))
	assert.Equal(t, 0, st.Len())
}

func TestStore_GetExpired(t *testing.T) {
	st := NewStore(10 * time.Millisecond)
	defer st.Close()

	st.New("sess-1", "user-1", 1, "M")
	time.Sleep(30 * time.Millisecond)

	assert.Nil(t, st.Get("sess-1"))
	assert.Equal(t, 0, st.Len())
}

func TestStore_JanitorEvicts(t *testing.T) {
	st := NewStore(10 * time.Millisecond)
	defer st.Close()

	st.New("sess-1", "user-1", 1, "M")
	st.StartJanitor(5 * time.Millisecond)

	assert.Eventually(t, func() bool {
		return st.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	st := NewStore(time.Minute)
	defer st.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("sess-%d", i)
			st.New(id, "user", 1, "M")
			if s := st.Get(id); s != nil {
				s.Lock()
				s.Asked[uint(i)] = true
				s.Unlock()
			}
			if i%2 == 0 {
				st.Delete(id)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, st.Len())
}

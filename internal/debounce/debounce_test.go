package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	var fired int32
	d := New(20*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })

	for i := 0; i < 5; i++ {
		d.Notify()
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(60 * time.Millisecond)
	require.EqualValues(t, 1, atomic.LoadInt32(&fired))
}

func TestDebouncerCancelPreventsFire(t *testing.T) {
	var fired int32
	d := New(10*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })

	d.Notify()
	d.Cancel()
	time.Sleep(30 * time.Millisecond)
	require.EqualValues(t, 0, atomic.LoadInt32(&fired))
}

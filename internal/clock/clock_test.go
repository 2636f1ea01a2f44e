package clock

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_TickAndNow(t *testing.T) {
	c := New()
	assert.Equal(t, int64(0), int64(c.Now()))

	assert.Equal(t, int64(1), int64(c.Tick()))
	assert.Equal(t, int64(2), int64(c.Tick()))
	assert.Equal(t, int64(2), int64(c.Now()))
}

func TestDriver_FiresSubscribers(t *testing.T) {
	mock := clock.NewMock()
	driver := NewDriver(mock, time.Second)

	var count int
	done := make(chan struct{})
	driver.Subscribe(func() {
		count++
		if count == 3 {
			close(done)
		}
	})

	go driver.Start()
	defer driver.Stop()

	for i := 0; i < 3; i++ {
		mock.Add(time.Second)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not fire subscriber in time")
	}
	require.Equal(t, 3, count)
}

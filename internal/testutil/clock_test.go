package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrozenClock_StaysPut(t *testing.T) {
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := NewFrozenClock(start)

	assert.Equal(t, start, clock.Now())
	assert.Equal(t, start, clock.Now(), "repeated reads do not advance")
}

func TestFrozenClock_AdvanceAndSet(t *testing.T) {
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := NewFrozenClock(start)

	clock.Advance(24 * time.Hour)
	assert.Equal(t, start.Add(24*time.Hour), clock.Now())

	target := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	clock.Set(target)
	assert.Equal(t, target, clock.Now())
}

func TestFrozenClock_ConcurrentUse(t *testing.T) {
	clock := NewFrozenClock(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(time.Minute)
			_ = clock.Now()
		}()
	}
	wg.Wait()

	want := time.Date(2026, 3, 10, 0, 10, 0, 0, time.UTC)
	assert.Equal(t, want, clock.Now())
}

package tenantlock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesPerTenant(t *testing.T) {
	registry := NewRegistry()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := registry.Lock(1)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestLockIsIndependentAcrossTenants(t *testing.T) {
	registry := NewRegistry()

	unlockA := registry.Lock(1)
	// A different tenant's lock must not block.
	done := make(chan struct{})
	go func() {
		unlockB := registry.Lock(2)
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}

func TestLockIsReusable(t *testing.T) {
	registry := NewRegistry()

	unlock := registry.Lock(1)
	unlock()
	unlock = registry.Lock(1)
	unlock()
}

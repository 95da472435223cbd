package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptedClock_Empty(t *testing.T) {
	clock := NewScriptedClock()
	assert.Equal(t, float32(0), clock.Tick())
	assert.Equal(t, float32(0), clock.Tick())
}

func TestScriptedClock_ReplaysInOrder(t *testing.T) {
	clock := NewScriptedClock(0.01, 0.02, 0.03)

	assert.Equal(t, float32(0.01), clock.Tick())
	assert.Equal(t, float32(0.02), clock.Tick())
	assert.Equal(t, float32(0.03), clock.Tick())
	assert.Equal(t, 3, clock.Ticks())
}

func TestScriptedClock_RepeatsLastStep(t *testing.T) {
	clock := NewScriptedClock(0.5, 0.25)

	clock.Tick()
	clock.Tick()
	assert.Equal(t, float32(0.25), clock.Tick())
	assert.Equal(t, float32(0.25), clock.Tick())
}

func TestScriptedClock_Reset(t *testing.T) {
	clock := NewScriptedClock(1, 2)
	clock.Tick()
	clock.Tick()

	clock.Reset()
	assert.Equal(t, 0, clock.Ticks())
	assert.Equal(t, float32(1), clock.Tick())
}

func TestScriptedClock_CopiesScript(t *testing.T) {
	steps := []float32{0.1}
	clock := NewScriptedClock(steps...)
	steps[0] = 9

	assert.Equal(t, float32(0.1), clock.Tick())
}

func TestScriptedClock_ThreadSafe(t *testing.T) {
	clock := NewScriptedClock(0.016)
	const numGoroutines = 50
	const callsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				clock.Tick()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, numGoroutines*callsPerGoroutine, clock.Ticks())
}

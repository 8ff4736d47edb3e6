package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlersRunInRegistrationOrder(t *testing.T) {
	t.Cleanup(func() {
		mu.Lock()
		reloaders = nil
		interrupters = nil
		mu.Unlock()
	})

	var order []int
	RegisterInterruptHandler(func() { order = append(order, 1) })
	RegisterInterruptHandler(func() { order = append(order, 2) })

	handleInterrupted()
	assert.Equal(t, []int{1, 2}, order)
}

func TestNilHandlersIgnored(t *testing.T) {
	t.Cleanup(func() {
		mu.Lock()
		reloaders = nil
		interrupters = nil
		mu.Unlock()
	})

	RegisterReloadHandler(nil)
	RegisterInterruptHandler(nil)
	handleReload()
	handleInterrupted()
}

func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	t.Cleanup(func() {
		mu.Lock()
		reloaders = nil
		interrupters = nil
		mu.Unlock()
	})

	ran := false
	RegisterReloadHandler(func() { panic("boom") })
	RegisterReloadHandler(func() { ran = true })

	handleReload()
	assert.True(t, ran)
}

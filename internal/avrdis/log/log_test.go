package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverPanicRunsCleanup(t *testing.T) {
	cleaned := false
	assert.NotPanics(t, func() {
		defer RecoverPanic("test", func() { cleaned = true })
		panic("boom")
	})
	assert.True(t, cleaned)
}

func TestRecoverPanicWithoutPanic(t *testing.T) {
	cleaned := false
	func() {
		defer RecoverPanic("test", func() { cleaned = true })
	}()
	assert.False(t, cleaned)
}

func TestSetupOnce(t *testing.T) {
	Setup(false)
	Setup(true)
	assert.True(t, Initialized())
	assert.NoError(t, Close())
}

package app

import (
	"os"
	"sync"
)

const testModeEnv = "GATEWARDEN_TEST_MODE"

var inTestMode = sync.OnceValue(func() bool {
	return os.Getenv(testModeEnv) == "1"
})

// InTestMode reports whether the process should skip runtime side effects.
// Test binaries set GATEWARDEN_TEST_MODE before any main wiring runs.
func InTestMode() bool {
	return inTestMode()
}

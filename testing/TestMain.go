// Package testing forces test mode for the whole binary so main wiring
// never starts real servers during go test.
package testing

import (
	"os"
	stdtesting "testing"
)

func init() {
	if os.Getenv("GATEWARDEN_TEST_MODE") == "" {
		_ = os.Setenv("GATEWARDEN_TEST_MODE", "1")
	}
}

func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}

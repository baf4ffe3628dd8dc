// Package guard sets GATEWARDEN_TEST_MODE as an import side effect. Test
// packages that reach runtime entry points import it with a blank
// identifier.
package guard

import "os"

func init() {
	if os.Getenv("GATEWARDEN_TEST_MODE") == "" {
		_ = os.Setenv("GATEWARDEN_TEST_MODE", "1")
	}
}

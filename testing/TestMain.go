// Package testing switches the process into test mode when blank-imported by a test binary,
// so code paths that would reach Redis or the public catalog stay dormant.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var testDefaults = map[string]string{
	"CARLUX_TEST_MODE": "1",
	"CATALOG_URL":      "http://127.0.0.1:0/products/category/vehicle",
	"CSRF_SECRET":      "test-csrf-secret",
}

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		for key, value := range testDefaults {
			if key == "CARLUX_TEST_MODE" || os.Getenv(key) == "" {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	ensureTestMode()
}

// TestMain runs m with the test-mode environment in place.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}

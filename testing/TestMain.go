package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

// ensureTestMode flags the process as a test run and keeps tests away from a
// developer's Redis or the public endpoint.
func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("SALESDASH_TEST_MODE", "1")
		_ = os.Setenv("REDIS_ADDR", "")
		if os.Getenv("SOURCE_URL") == "" {
			_ = os.Setenv("SOURCE_URL", "http://127.0.0.1:0/produtos")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}

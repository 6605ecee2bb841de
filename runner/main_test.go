package runner

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies that no supervisor or process goroutines outlive a test.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

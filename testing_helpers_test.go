package mediaforge

import "go.uber.org/zap"

// mustTestLogger returns a no-op-ish logger suitable for tests: cheap to
// build, doesn't spam test output with Info-level noise.
func mustTestLogger() *zap.Logger {
	return zap.NewNop()
}

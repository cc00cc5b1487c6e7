package logger

import "sync"

// ResetSetupLogOnceForTests resets the setupLogOnce guard so tests can re-run SetupLogger.
func ResetSetupLogOnceForTests() {
	setupLogOnce = sync.Once{}
}

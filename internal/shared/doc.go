// Package shared provides common utilities and test helpers used across
// the sheetio codebase.
//
// # Test Utilities
//
// The testutil subpackage captures slog output so tests can assert on
// log records:
//
//	logger, handler := testutil.NewTestLogger(t)
//	svc := services.NewHealthService("1.0.0", paths, logger)
//	...
//	testutil.AssertLogContains(t, handler, slog.LevelWarn, "Readiness check failed")
//
// This package should only contain helpers used by multiple packages. It
// should not contain business logic.
package shared

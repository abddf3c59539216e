// Package shared holds helpers used by more than one package's tests.
//
// The testutil subpackage captures slog output so tests can assert on
// what a component logged:
//
//	logger, logs := testutil.NewTestLogger(t)
//	loader := dataprocessing.NewLoader(logger, nil)
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "Malformed value")
package shared

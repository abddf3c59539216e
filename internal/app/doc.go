// Package app wires configuration, logging and telemetry around one
// pipeline run for the command-line tools.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, the YAML file and OCC_* variables
//	2. Apply command-line overrides and validate again
//	3. Resolve paths against the base directory
//	4. Initialize the JSON logger and OpenTelemetry providers
//	5. Run the pipeline and print its table to stdout
//	6. Flush traces and close the log file
//
// # Error Handling
//
// NewApplication and Run return errors to the caller. Only Main turns them
// into an exit code, so the command entry points stay one line long.
package app

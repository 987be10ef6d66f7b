package main

// Exit codes returned by skp.
const (
	ExitSuccess          = 0 // Success
	ExitError            = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError      = 2 // Configuration error (no .skillpath, invalid config.yml)
	ExitDataError        = 3 // Data error (malformed input, validation failure, dependency cycle)
	ExitNotFound         = 4 // Unknown role, skill or resource
	ExitModelUnavailable = 5 // Embedding model unreachable; analysis degraded
	ExitIndexStale       = 6 // Semantic index is missing or stale
)

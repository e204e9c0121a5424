// Package core defines the shared language of the leapdq system.
//
// This package contains:
//   - The in-memory Dataset that every check reads
//   - The validation Report and its Failure records
//   - Source configuration shared by ingestion adapters
//
// pkg/core imports only the standard library.
// All other packages depend on core, not the reverse.
package core

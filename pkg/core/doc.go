// Package core defines the shared language of the sqldrill system.
//
// This package contains:
//   - Query results and verdicts (Result, Verdict, Submission)
//   - Learner state entities (Learner, Attempt, Draft, Progress)
//   - Service interfaces (Store)
//   - Configuration types (AdapterConfig)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core

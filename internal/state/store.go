// Package state persists learner state in SQLite: drafts, attempts,
// completions and hint unlocks. The schema is managed by goose migrations
// embedded in the binary.
package state

import "github.com/leapstack-labs/sqldrill/pkg/core"

// DefaultLearnerID identifies the single local learner of the CLI.
const DefaultLearnerID = "local"

// Ensure SQLiteStore implements core.Store.
var _ core.Store = (*SQLiteStore)(nil)

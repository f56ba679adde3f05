// Package types provides shared types for the exercises feature.
package types //nolint:revive // intentional: imported with alias extypes

import (
	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/internal/ui/features/common"
	"github.com/leapstack-labs/sqldrill/pkg/catalog"
)

// Signals are the datastar signals of the exercise page.
type Signals struct {
	SQL string `json:"sql"`
}

// ExerciseView holds everything the exercise page renders.
type ExerciseView struct {
	Sidebar   common.SidebarData
	Exercise  *catalog.Exercise
	Draft     string
	Hints     []practice.HintState
	Completed bool
}

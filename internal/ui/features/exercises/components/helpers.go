package components

import (
	"fmt"

	"github.com/leapstack-labs/sqldrill/internal/practice"
)

func unlockedCount(hints []practice.HintState) int {
	n := 0
	for _, hs := range hints {
		if hs.Unlocked {
			n++
		}
	}
	return n
}

func hintsHeading(hints []practice.HintState) string {
	return fmt.Sprintf("Gợi ý (%d/%d)", unlockedCount(hints), len(hints))
}

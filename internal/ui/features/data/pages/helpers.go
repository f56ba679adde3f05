package pages

import (
	"fmt"

	"github.com/leapstack-labs/sqldrill/pkg/core"
)

func nullableMark(nullable bool) string {
	if nullable {
		return "✓"
	}
	return ""
}

func previewHeading(preview *core.Result) string {
	return fmt.Sprintf("Xem trước (%d dòng)", preview.RowCount())
}

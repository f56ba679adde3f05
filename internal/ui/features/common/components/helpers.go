package components

// Helper functions for shared components

import (
	"fmt"
	"time"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/sqldrill/internal/ui/features/common"
	"github.com/leapstack-labs/sqldrill/pkg/core"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"

func subscribe(url string) string {
	return "@get('" + url + "')"
}

func exerciseURL(id int) templ.SafeURL {
	return templ.SafeURL("/exercises/" + common.Itoa(id))
}

func exerciseLabel(ex common.ExerciseItem) string {
	return common.Itoa(ex.ID) + ". " + ex.Title
}

func progressLabel(data common.SidebarData) string {
	return fmt.Sprintf("%d/%d (%d%%)", data.Completed, data.Total, data.Percent)
}

func resultSummary(res *core.Result) string {
	return fmt.Sprintf("%d rows, %s", res.RowCount(), res.Duration.Round(time.Microsecond))
}

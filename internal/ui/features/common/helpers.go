// Package common provides shared types and utilities for UI features.
package common

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/sqldrill/internal/practice"
)

// Itoa converts an integer to a string.
func Itoa(n int) string {
	return strconv.Itoa(n)
}

// FormatValue renders a result cell, showing NULL for nil.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case string:
		return val
	case float64:
		s := strconv.FormatFloat(val, 'f', 4, 64)
		s = strings.TrimRight(s, "0")
		return strings.TrimSuffix(s, ".")
	case float32:
		return FormatValue(float64(val))
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// BuildSidebar assembles the exercise list and progress for a learner.
func BuildSidebar(ctx context.Context, eng *practice.Engine, learnerID string, activeID int) (SidebarData, error) {
	p, err := eng.Progress(ctx, learnerID)
	if err != nil {
		return SidebarData{}, err
	}
	data := SidebarData{
		Completed:   len(p.Completed),
		Total:       p.Total,
		Percent:     p.Percent(),
		AllComplete: p.AllComplete(),
	}
	for _, ex := range eng.Catalog().List() {
		data.Exercises = append(data.Exercises, ExerciseItem{
			ID:        ex.ID,
			Title:     ex.Title,
			Completed: p.IsCompleted(ex.ID),
			Active:    ex.ID == activeID,
		})
	}
	if activeID > 0 {
		data.CurrentPath = "/exercises/" + Itoa(activeID)
	}
	return data, nil
}

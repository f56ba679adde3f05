// Package common provides shared types and utilities for UI features.
package common

// ExerciseItem is one entry of the exercise sidebar.
type ExerciseItem struct {
	ID        int
	Title     string
	Completed bool
	Active    bool
}

// SidebarData holds data needed for the sidebar rendering.
type SidebarData struct {
	Exercises   []ExerciseItem
	Completed   int
	Total       int
	Percent     int
	AllComplete bool
	CurrentPath string
}

package pages

// Helper functions for exercise page components

import (
	"encoding/json"
	"strings"

	"github.com/leapstack-labs/sqldrill/internal/ui/features/common"
	extypes "github.com/leapstack-labs/sqldrill/internal/ui/features/exercises/types"
)

func actionPath(id int, action string) string {
	return "/exercises/" + common.Itoa(id) + "/" + action
}

// action builds a datastar backend action for the exercise endpoint.
func action(method string, id int, name string) string {
	return "@" + method + "('" + actionPath(id, name) + "')"
}

func pageTitle(view extypes.ExerciseView) string {
	return "Bài " + common.Itoa(view.Exercise.ID)
}

func heading(view extypes.ExerciseView) string {
	return pageTitle(view) + ": " + view.Exercise.Title
}

func hasPrompt(view extypes.ExerciseView) bool {
	return strings.TrimSpace(view.Exercise.PromptHTML) != ""
}

func signalsJSON(draft string) string {
	b, _ := json.Marshal(extypes.Signals{SQL: draft})
	return string(b)
}

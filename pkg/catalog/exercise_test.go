package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftKey(t *testing.T) {
	assert.Equal(t, "sql_code_exercise_1", DraftKey(1))
	ex := &Exercise{ID: 4}
	assert.Equal(t, "sql_code_exercise_4", ex.DraftKey())
}

func TestExercise_Hint(t *testing.T) {
	ex := &Exercise{
		ID: 1,
		Hints: []Hint{
			{ID: 1, Title: "first", Level: LevelBasic},
			{ID: 2, Title: "second", Level: LevelAdvanced},
		},
	}

	h, err := ex.Hint(2)
	require.NoError(t, err)
	assert.Equal(t, "second", h.Title)

	_, err = ex.Hint(3)
	assert.ErrorIs(t, err, ErrHintNotFound)
}

func TestLevel_Valid(t *testing.T) {
	assert.True(t, LevelBasic.Valid())
	assert.True(t, LevelIntermediate.Valid())
	assert.True(t, LevelAdvanced.Valid())
	assert.False(t, Level("").Valid())
	assert.False(t, Level("Basic").Valid())
}

func TestExercise_PromptMarkdown(t *testing.T) {
	ex := &Exercise{
		ID:         1,
		PromptHTML: "<p>Use <code>CASE WHEN</code> on <strong>TaxAmt</strong></p>",
	}
	md, err := ex.PromptMarkdown()
	require.NoError(t, err)
	assert.Contains(t, md, "`CASE WHEN`")
	assert.Contains(t, md, "**TaxAmt**")

	plain := &Exercise{ID: 2, Description: "just text"}
	md, err = plain.PromptMarkdown()
	require.NoError(t, err)
	assert.Equal(t, "just text", md)
}

func TestExercise_PromptText(t *testing.T) {
	ex := &Exercise{
		PromptHTML: "<p>Group by <code>TerritoryID</code>\n and keep &ge; 200000</p>",
	}
	assert.Equal(t, "Group by TerritoryID and keep ≥ 200000", ex.PromptText())

	assert.Equal(t, "fallback", (&Exercise{Description: "fallback"}).PromptText())
}

func TestLevel_Label(t *testing.T) {
	assert.Equal(t, "Cơ bản", LevelBasic.Label())
	assert.Equal(t, "Trung bình", LevelIntermediate.Label())
	assert.Equal(t, "Nâng cao", LevelAdvanced.Label())
	assert.Equal(t, "Khác", Level("expert").Label())
}

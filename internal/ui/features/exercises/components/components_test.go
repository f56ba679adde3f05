package components

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/pkg/catalog"
	"github.com/leapstack-labs/sqldrill/pkg/core"
)

func TestVerdict(t *testing.T) {
	tests := []struct {
		name     string
		sub      *core.Submission
		contains []string
		excludes []string
	}{
		{
			name:     "correct with advice",
			sub:      &core.Submission{Verdict: core.VerdictCorrect, Message: "Đúng", RowCheckMessage: "<thiếu GROUP BY>"},
			contains: []string{`class="verdict correct"`, `<p class="advice">&lt;thiếu GROUP BY&gt;</p>`},
			excludes: []string{"missing"},
		},
		{
			name:     "incorrect lists missing columns",
			sub:      &core.Submission{Verdict: core.VerdictIncorrect, Message: "Sai", MissingColumns: []string{"A", "B"}},
			contains: []string{`class="verdict incorrect"`, "Thiếu cột: A, B"},
			excludes: []string{"advice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Verdict(tt.sub).Render(context.Background(), &buf))
			body := buf.String()
			for _, want := range tt.contains {
				assert.Contains(t, body, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, body, unwanted)
			}
		})
	}
}

func TestHints_OnlyUnlocked(t *testing.T) {
	hints := []practice.HintState{
		{Hint: catalog.Hint{Title: "Mở", Level: catalog.LevelBasic, Content: "nội dung"}, Unlocked: true},
		{Hint: catalog.Hint{Title: "Khóa", Level: catalog.LevelAdvanced, Content: "bí mật"}},
	}

	var buf bytes.Buffer
	require.NoError(t, Hints(hints).Render(context.Background(), &buf))
	body := buf.String()

	assert.Contains(t, body, "Gợi ý (1/2)")
	assert.Contains(t, body, `class="hint basic"`)
	assert.NotContains(t, body, "bí mật")

	buf.Reset()
	require.NoError(t, Hints(hints[1:]).Render(context.Background(), &buf))
	assert.Equal(t, `<section id="hints" class="hints"></section>`, buf.String())
}

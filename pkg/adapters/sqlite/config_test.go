package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    *Params
		wantErr bool
	}{
		{
			name:  "nil params returns empty struct",
			input: nil,
			want:  &Params{},
		},
		{
			name: "pragmas",
			input: map[string]any{
				"pragmas": map[string]any{"cache_size": "-2000"},
			},
			want: &Params{Pragmas: map[string]string{"cache_size": "-2000"}},
		},
		{
			name: "bad pragma name",
			input: map[string]any{
				"pragmas": map[string]any{"x; DROP": "1"},
			},
			wantErr: true,
		},
		{
			name: "wrong shape",
			input: map[string]any{
				"pragmas": []any{"cache_size"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParams(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

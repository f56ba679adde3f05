package duckdb

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
			name:  "empty map returns empty struct",
			input: map[string]any{},
			want:  &Params{},
		},
		{
			name: "extensions only",
			input: map[string]any{
				"extensions": []any{"icu", "json"},
			},
			want: &Params{
				Extensions: []string{"icu", "json"},
			},
		},
		{
			name: "settings only",
			input: map[string]any{
				"settings": map[string]any{
					"memory_limit": "1GB",
					"threads":      "2",
				},
			},
			want: &Params{
				Settings: map[string]string{
					"memory_limit": "1GB",
					"threads":      "2",
				},
			},
		},
		{
			name: "invalid extensions type",
			input: map[string]any{
				"extensions": map[string]any{"a": 1},
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

func TestParams_Statements(t *testing.T) {
	p := &Params{
		Extensions: []string{"icu"},
		Settings:   map[string]string{"threads": "2", "memory_limit": "it's"},
	}
	assert.Equal(t, []string{
		"INSTALL icu",
		"LOAD icu",
		"SET memory_limit = 'it''s'",
		"SET threads = '2'",
	}, p.statements())
}

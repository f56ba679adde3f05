package sqlite

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds SQLite-specific configuration.
// Parsed from core.AdapterConfig.Params using mapstructure.
type Params struct {
	// Pragmas applied after connecting (e.g., cache_size, case_sensitive_like)
	Pragmas map[string]string `mapstructure:"pragmas"`
}

// ParseParams decodes engine params into Params.
func ParseParams(raw map[string]any) (*Params, error) {
	params := &Params{}
	if len(raw) == 0 {
		return params, nil
	}
	if err := mapstructure.Decode(raw, params); err != nil {
		return nil, fmt.Errorf("invalid sqlite params: %w", err)
	}
	for name := range params.Pragmas {
		if !isIdentifier(name) {
			return nil, fmt.Errorf("invalid sqlite params: bad pragma name %q", name)
		}
	}
	return params, nil
}

func (p *Params) pragmaNames() []string {
	names := make([]string, 0, len(p.Pragmas))
	for name := range p.Pragmas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

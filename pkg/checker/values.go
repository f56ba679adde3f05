package checker

import (
	"fmt"
	"time"

	"go.starlark.net/starlark"
)

// toStarlark converts a driver value from a query result.
func toStarlark(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case string:
		return starlark.String(val), nil
	case []byte:
		return starlark.String(string(val)), nil
	case int:
		return starlark.MakeInt(val), nil
	case int32:
		return starlark.MakeInt64(int64(val)), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case uint64:
		return starlark.MakeUint64(val), nil
	case float32:
		return starlark.Float(float64(val)), nil
	case float64:
		return starlark.Float(val), nil
	case bool:
		return starlark.Bool(val), nil
	case time.Time:
		return starlark.String(val.Format(time.RFC3339)), nil
	case fmt.Stringer:
		return starlark.String(val.String()), nil
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}
